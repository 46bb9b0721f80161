package request

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/lib-core-golang/diag"
)

var defaultLogger = diag.CreateLogger()

var defaultClient = &http.Client{
	Timeout: 30 * time.Second,
}

type sendCfg struct {
	logger diag.Logger
	client *http.Client
}

// SendOpt is a send specific option
type SendOpt func(cfg *sendCfg)

// WithClient sends the request with a given client
func WithClient(client *http.Client) SendOpt {
	return func(cfg *sendCfg) {
		cfg.client = client
	}
}

// ReqFactory is a function that creates an instance of a request
type ReqFactory func() (*http.Request, error)

// WithHeader returns a factory that will add a header to created request
func (f ReqFactory) WithHeader(name string, value string) ReqFactory {
	return func() (*http.Request, error) {
		req, err := f()
		if err != nil {
			return nil, err
		}
		req.Header.Add(name, value)
		return req, nil
	}
}

// Get creates a new req factory that creates a get request for given url
func Get(url string) ReqFactory {
	return func() (*http.Request, error) {
		return http.NewRequest("GET", url, nil)
	}
}

// Post creates a new req factory that creates a post request for given url
func Post(url string, contentType string, body io.Reader) ReqFactory {
	return func() (*http.Request, error) {
		req, err := http.NewRequest("POST", url, body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", contentType)
		return req, nil
	}
}

// PostJSON creates a new req factory that posts json encoded payload
func PostJSON(url string, payload interface{}) ReqFactory {
	return func() (*http.Request, error) {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Wrap(err, "Failed to marshal payload")
		}
		return Post(url, "application/json", bytes.NewReader(data))()
	}
}

// HTTPError is returned when a remote responds with non 2xx status
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e HTTPError) Error() string {
	return fmt.Sprintf("Unexpected response [%v](%v): %v", e.StatusCode, e.Status, e.Body)
}

// NewHTTPErrorFromResponse reads the response and builds an error out of it
func NewHTTPErrorFromResponse(res *http.Response) error {
	defer res.Body.Close()
	body, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return errors.Wrapf(err, "Failed to read body of %v response", res.StatusCode)
	}
	return HTTPError{
		StatusCode: res.StatusCode,
		Status:     http.StatusText(res.StatusCode),
		Body:       string(body),
	}
}

// ResFactory is a function that holds a request result with a response or error
type ResFactory func() (*http.Response, error)

// ReadAll will read entire body as a byte array
func (f ResFactory) ReadAll() ([]byte, error) {
	res, err := f()
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	return ioutil.ReadAll(res.Body)
}

// DecodeJSON will decode the body into the receiver
func (f ResFactory) DecodeJSON(receiver interface{}) error {
	res, err := f()
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if err := json.NewDecoder(res.Body).Decode(receiver); err != nil {
		return errors.Wrap(err, "Failed to decode response")
	}
	return nil
}

func newResFactory(res *http.Response, err error) ResFactory {
	var httpErr error
	if err == nil && res.StatusCode >= 300 {
		httpErr = NewHTTPErrorFromResponse(res)
	}
	return func() (*http.Response, error) {
		if err != nil {
			return nil, err
		}
		if httpErr != nil {
			return nil, httpErr
		}
		return res, nil
	}
}

// Do will send the request. Will fail if response status is other than 2xx
func Do(ctx context.Context, factory ReqFactory, opts ...SendOpt) ResFactory {
	cfg := sendCfg{logger: defaultLogger, client: defaultClient}
	for _, opt := range opts {
		opt(&cfg)
	}
	req, err := factory()
	if err != nil {
		return newResFactory(nil, err)
	}
	req = req.WithContext(ctx)
	if requestID := diag.RequestIDValue(ctx); requestID != "" {
		req.Header.Set("x-request-id", requestID)
	}

	cfg.logger.Debug(ctx, "Sending %v %v", req.Method, req.URL)
	res, err := cfg.client.Do(req)
	if err != nil {
		cfg.logger.WithError(err).Error(ctx, "Request %v %v failed", req.Method, req.URL)
		return newResFactory(nil, err)
	}
	cfg.logger.
		WithData(diag.MsgData{"statusCode": res.StatusCode}).
		Debug(ctx, "Got response for %v %v", req.Method, req.URL)
	return newResFactory(res, nil)
}
