package httpx

import "net/http"

// Client is the transport every upstream classifier talks through.
//
//go:generate mockery --name=Client --dir=. --output=./mocks --filename=http_client_mock.go --case=underscore
type Client interface {
	Do(req *http.Request) (*http.Response, error)
}
