package resio

import "github.com/spf13/afero"

// DefaultFs is the default filesystem used for file: URIs by loaders that
// were not given an explicit filesystem. It defaults to the OS filesystem
// but can be overridden for testing.
//
// Example usage for testing:
//
//	func TestMyLoad(t *testing.T) {
//	    memFs := afero.NewMemMapFs()
//	    afero.WriteFile(memFs, "/data.txt", []byte("hello"), 0644)
//	    resio.SetDefaultFs(memFs)
//	    defer resio.ResetDefaultFs()
//	    // ... test code ...
//	}
var DefaultFs afero.Fs = afero.NewOsFs()

// SetDefaultFs sets the global default filesystem. Loaders capture the
// filesystem at construction, so this only affects loaders built
// afterwards — not the package-level Default loader.
//
// WARNING: This modifies global state and is NOT thread-safe.
// Do not use with t.Parallel() tests. For concurrent tests,
// use WithFilesystem() on individual loaders instead.
//
// Call during test setup (e.g., TestMain), not during test execution.
func SetDefaultFs(fs afero.Fs) {
	DefaultFs = fs
}

// ResetDefaultFs resets the global filesystem to the OS filesystem.
// Call this in test cleanup to restore default behavior.
func ResetDefaultFs() {
	DefaultFs = afero.NewOsFs()
}
