package transport

import (
	"bytes"
	"context"
	"io"
	"net/url"

	"github.com/vincent-petithory/dataurl"
)

// DataTransport serves data: URIs (RFC 2397) by decoding the payload
// embedded in the URI itself.
type DataTransport struct{}

// NewDataTransport creates a new DataTransport.
func NewDataTransport() *DataTransport {
	return &DataTransport{}
}

// Fetch decodes the data URI payload. The media type declared in the URI,
// including any charset parameter, is carried on the Resource.
func (t *DataTransport) Fetch(_ context.Context, u *url.URL) (*Resource, error) {
	du, err := dataurl.DecodeString(u.String())
	if err != nil {
		return nil, err
	}

	return &Resource{
		Body:        io.NopCloser(bytes.NewReader(du.Data)),
		ContentType: du.MediaType.String(),
	}, nil
}
