package browser

import (
	"context"
	"errors"
	"testing"

	"workflow_automation/domain/interfaces"
	"workflow_automation/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSession struct {
	navErr    error
	closeErr  error
	navigated []string
	closed    int
}

func (s *stubSession) Navigate(ctx context.Context, url string) error {
	s.navigated = append(s.navigated, url)
	return s.navErr
}

func (s *stubSession) Find(ctx context.Context, selector string) (interfaces.Element, bool) {
	return nil, false
}

func (s *stubSession) SendText(ctx context.Context, element interfaces.Element, text string) error {
	return nil
}

func (s *stubSession) Click(ctx context.Context, element interfaces.Element) error {
	return nil
}

func (s *stubSession) Close() error {
	s.closed++
	return s.closeErr
}

func TestOpenStartURL(t *testing.T) {
	ctx := context.Background()

	session := &stubSession{}
	require.NoError(t, openStartURL(ctx, session, ""))
	assert.Empty(t, session.navigated)

	require.NoError(t, openStartURL(ctx, session, "https://example.com"))
	assert.Equal(t, []string{"https://example.com"}, session.navigated)
	assert.Zero(t, session.closed)
}

func TestOpenStartURLFailureClosesSession(t *testing.T) {
	navErr := errors.New("net::ERR_NAME_NOT_RESOLVED")
	session := &stubSession{navErr: navErr}

	err := openStartURL(context.Background(), session, "https://nowhere.invalid")
	require.Error(t, err)
	assert.ErrorIs(t, err, navErr)
	assert.Equal(t, 1, session.closed)
}

func TestOpenStartURLKeepsCloseError(t *testing.T) {
	navErr := errors.New("timeout")
	closeErr := errors.New("invalid session id")
	session := &stubSession{navErr: navErr, closeErr: closeErr}

	err := openStartURL(context.Background(), session, "https://example.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, navErr)
	assert.ErrorIs(t, err, closeErr)
	assert.Contains(t, err.Error(), "failed to close browser")
}

func TestNewSessionUnsupportedDriver(t *testing.T) {
	_, err := NewSession(context.Background(), &config.Config{Driver: "netscape"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "netscape")
}
