package envista

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/cenkalti/backoff/v4"
)

// get performs an authenticated GET against the API. Authentication
// failures and client errors are permanent; network failures and server
// errors are retried with exponential backoff before giving up with
// ErrCommunication.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	var body []byte

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", "ApiToken "+c.token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrCommunication, err.Error())
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return backoff.Permanent(ErrAuthentication)
		case resp.StatusCode >= http.StatusInternalServerError:
			return fmt.Errorf("%w: unexpected status %s", ErrCommunication, resp.Status)
		case resp.StatusCode != http.StatusOK:
			return backoff.Permanent(fmt.Errorf("envista: unexpected status %s", resp.Status))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrCommunication, err.Error())
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		c.log.Error().Err(err).Str("url", url).Msg("request failed")
		return nil, err
	}

	c.log.Debug().Str("url", url).Int("bytes", len(body)).Msg("request succeeded")
	return body, nil
}
