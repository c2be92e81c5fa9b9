package resio_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/arloliu/resio"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}

	return fs
}

// countingTransport records fetches so tests can assert that a failing
// load never reached the transport layer.
type countingTransport struct {
	calls atomic.Int64
}

func (c *countingTransport) Fetch(_ context.Context, _ *url.URL) (*resio.Resource, error) {
	c.calls.Add(1)
	return nil, fmt.Errorf("should not be reached")
}

// stubPackageResolver maps every package URI to a fixed target.
type stubPackageResolver struct {
	target string
	err    error
	seen   []string
}

func (s *stubPackageResolver) ResolvePackage(_ context.Context, u *url.URL) (*url.URL, error) {
	s.seen = append(s.seen, u.String())
	if s.err != nil {
		return nil, s.err
	}

	return url.Parse(s.target)
}

func TestDirectLoader(t *testing.T) {
	ctx := context.Background()

	fs := newMemFs(t, map[string]string{"/data/hello.txt": "hello world"})
	loader := resio.NewDirect(resio.WithFilesystem(fs))

	t.Run("absolute file URI", func(t *testing.T) {
		data, err := loader.ReadBytes(ctx, "file:///data/hello.txt")
		require.NoError(t, err)
		assert.Equal(t, "hello world", string(data))
	})

	t.Run("relative reference fails without transport call", func(t *testing.T) {
		counter := &countingTransport{}
		l := resio.NewDirect(resio.WithTransport("file", counter))

		_, err := l.ReadBytes(ctx, "data/hello.txt")
		require.Error(t, err)

		var rerr *resio.InvalidReferenceError
		require.ErrorAs(t, err, &rerr)
		assert.Equal(t, int64(0), counter.calls.Load())
	})

	t.Run("package URI fails without transport call", func(t *testing.T) {
		counter := &countingTransport{}
		l := resio.NewDirect(resio.WithTransport("file", counter))

		_, err := l.ReadBytes(ctx, "package:mylib/hello.txt")
		require.Error(t, err)

		var serr *resio.UnsupportedSchemeError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, "package", serr.Scheme)
		assert.Equal(t, int64(0), counter.calls.Load())
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		_, err := loader.ReadBytes(ctx, "ftp://example.com/file")

		var serr *resio.UnsupportedSchemeError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, "ftp", serr.Scheme)
	})

	t.Run("open read concatenates to full content", func(t *testing.T) {
		rc, err := loader.OpenRead(ctx, "file:///data/hello.txt")
		require.NoError(t, err)
		defer rc.Close()

		var got []byte
		buf := make([]byte, 3)
		for {
			n, readErr := rc.Read(buf)
			got = append(got, buf[:n]...)
			if readErr == io.EOF {
				break
			}
			require.NoError(t, readErr)
		}

		full, err := loader.ReadBytes(ctx, "file:///data/hello.txt")
		require.NoError(t, err)
		assert.Equal(t, full, got)
	})
}

func TestResolvingLoader(t *testing.T) {
	ctx := context.Background()

	base := &url.URL{Scheme: "file", Path: "/data/"}
	fs := newMemFs(t, map[string]string{
		"/data/hello.txt":       "hello world",
		"/data/sub/nested.txt":  "nested",
		"/pkgs/mylib/greet.txt": "greetings",
	})
	loader := resio.New(resio.WithFilesystem(fs), resio.WithBaseURI(base))

	t.Run("absolute URI is a no-op", func(t *testing.T) {
		u, err := loader.Resolve(ctx, "file:///data/hello.txt")
		require.NoError(t, err)
		assert.Equal(t, "file:///data/hello.txt", u.String())

		data, err := loader.ReadBytes(ctx, "file:///data/hello.txt")
		require.NoError(t, err)
		assert.Equal(t, "hello world", string(data))
	})

	t.Run("relative reference against base", func(t *testing.T) {
		data, err := loader.ReadBytes(ctx, "hello.txt")
		require.NoError(t, err)
		assert.Equal(t, "hello world", string(data))

		data, err = loader.ReadBytes(ctx, "sub/nested.txt")
		require.NoError(t, err)
		assert.Equal(t, "nested", string(data))
	})

	t.Run("reference resolution cases", func(t *testing.T) {
		cases := []struct {
			base string
			ref  string
			want string
		}{
			{"file:///a/b/", "c.txt", "file:///a/b/c.txt"},
			{"http://host/x/", "../y", "http://host/y"},
			{"http://host/x/", "/abs", "http://host/abs"},
			{"http://host/x/page", "?q=1", "http://host/x/page?q=1"},
			{"file:///a/b/", "file:///other", "file:///other"},
		}
		for _, tc := range cases {
			b, err := url.Parse(tc.base)
			require.NoError(t, err)

			l := resio.New(resio.WithBaseURI(b))
			u, err := l.Resolve(ctx, tc.ref)
			require.NoError(t, err)
			assert.Equal(t, tc.want, u.String(), "base %s + ref %s", tc.base, tc.ref)
		}
	})

	t.Run("package resolution pass-through", func(t *testing.T) {
		stub := &stubPackageResolver{target: "file:///pkgs/mylib/greet.txt"}
		l := resio.New(resio.WithFilesystem(fs), resio.WithPackageResolver(stub))

		data, err := l.ReadBytes(ctx, "package:mylib/greet.txt")
		require.NoError(t, err)
		assert.Equal(t, "greetings", string(data))
		assert.Equal(t, []string{"package:mylib/greet.txt"}, stub.seen)

		// The resolver's result is used as-is, no further rewriting.
		u, err := l.Resolve(ctx, "package:mylib/greet.txt")
		require.NoError(t, err)
		assert.Equal(t, "file:///pkgs/mylib/greet.txt", u.String())
	})

	t.Run("package URI without resolver", func(t *testing.T) {
		_, err := loader.ReadBytes(ctx, "package:mylib/greet.txt")

		var perr *resio.PackageResolutionError
		require.ErrorAs(t, err, &perr)
	})

	t.Run("package resolver failure", func(t *testing.T) {
		stub := &stubPackageResolver{err: fmt.Errorf("unknown package")}
		l := resio.New(resio.WithPackageResolver(stub))

		_, err := l.ReadBytes(ctx, "package:nope/file.txt")

		var perr *resio.PackageResolutionError
		require.ErrorAs(t, err, &perr)
	})

	t.Run("double indirection fails fast", func(t *testing.T) {
		for _, target := range []string{"package:other/file.txt", "still/relative.txt"} {
			stub := &stubPackageResolver{target: target}
			l := resio.New(resio.WithPackageResolver(stub))

			_, err := l.ReadBytes(ctx, "package:mylib/file.txt")

			var perr *resio.PackageResolutionError
			require.ErrorAs(t, err, &perr, target)
		}
	})

	t.Run("normalized scheme must be loadable", func(t *testing.T) {
		stub := &stubPackageResolver{target: "ftp://example.com/file"}
		l := resio.New(resio.WithPackageResolver(stub))

		_, err := l.ReadBytes(ctx, "package:mylib/file.txt")

		var serr *resio.UnsupportedSchemeError
		require.ErrorAs(t, err, &serr)
	})

	t.Run("both variants dispatch identically on absolute URIs", func(t *testing.T) {
		direct := resio.NewDirect(resio.WithFilesystem(fs))

		for _, uri := range []string{"file:///data/hello.txt", "data:,payload"} {
			a, errA := direct.ReadBytes(ctx, uri)
			b, errB := loader.ReadBytes(ctx, uri)
			require.NoError(t, errA)
			require.NoError(t, errB)
			assert.Equal(t, a, b, uri)
		}
	})
}

func TestReadString(t *testing.T) {
	ctx := context.Background()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/utf8":
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, _ = fmt.Fprint(w, "café")
		default:
			// 0xe9 is é in Latin-1; no charset declared.
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte{'c', 'a', 'f', 0xe9})
		}
	}))
	defer ts.Close()

	fs := newMemFs(t, map[string]string{"/data/utf8.txt": "héllo"})
	loader := resio.New(resio.WithFilesystem(fs))

	t.Run("file decodes as utf-8", func(t *testing.T) {
		text, err := loader.ReadString(ctx, "file:///data/utf8.txt")
		require.NoError(t, err)
		assert.Equal(t, "héllo", text)
	})

	t.Run("data decodes as ascii", func(t *testing.T) {
		text, err := loader.ReadString(ctx, "data:,Hello%20World")
		require.NoError(t, err)
		assert.Equal(t, "Hello World", text)
	})

	t.Run("data rejects non-ascii without charset", func(t *testing.T) {
		_, err := loader.ReadString(ctx, "data:,caf%C3%A9")
		require.Error(t, err)

		var terr *resio.TransportError
		require.ErrorAs(t, err, &terr)
	})

	t.Run("http without charset decodes as latin-1", func(t *testing.T) {
		text, err := loader.ReadString(ctx, ts.URL+"/latin")
		require.NoError(t, err)
		assert.Equal(t, "café", text)
	})

	t.Run("http with declared utf-8", func(t *testing.T) {
		text, err := loader.ReadString(ctx, ts.URL+"/utf8")
		require.NoError(t, err)
		assert.Equal(t, "café", text)
	})

	t.Run("explicit encoding wins", func(t *testing.T) {
		text, err := loader.ReadString(ctx, ts.URL+"/latin", resio.WithEncoding("iso-8859-1"))
		require.NoError(t, err)
		assert.Equal(t, "café", text)
	})
}

func TestConcurrentLoads(t *testing.T) {
	ctx := context.Background()

	files := make(map[string]string)
	for i := 0; i < 32; i++ {
		files[fmt.Sprintf("/data/f%d.txt", i)] = fmt.Sprintf("content-%d", i)
	}
	loader := resio.New(resio.WithFilesystem(newMemFs(t, files)))

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()

			data, err := loader.ReadBytes(ctx, fmt.Sprintf("file:///data/f%d.txt", i))
			assert.NoError(t, err)
			assert.Equal(t, fmt.Sprintf("content-%d", i), string(data))
		}()
	}
	wg.Wait()
}
