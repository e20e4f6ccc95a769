package sender

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMTPSender_SendEmail(t *testing.T) {
	s, err := NewSMTPSender("mail.local", "2525", "bot@shop.local", "pw", "")
	require.NoError(t, err)

	var (
		gotAddr string
		gotFrom string
		gotTo   []string
		gotMsg  string
	)
	s.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, string(msg)
		return nil
	}

	res, err := s.SendEmail(context.Background(), "alice@example.com", "Order Confirmed!", "<p>hi</p>")
	require.NoError(t, err)

	assert.Equal(t, "mail.local:2525", gotAddr)
	assert.Equal(t, "bot@shop.local", gotFrom)
	assert.Equal(t, []string{"alice@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "Subject: Order Confirmed!\r\n")
	assert.Contains(t, gotMsg, "Content-Type: text/html; charset=UTF-8\r\n")
	assert.True(t, strings.HasSuffix(gotMsg, "\r\n\r\n<p>hi</p>"))
	assert.Contains(t, gotMsg, "Message-ID: "+res.MessageID)
}

func TestSMTPSender_Errors(t *testing.T) {
	_, err := NewSMTPSender("", "25", "", "", "")
	assert.Error(t, err)

	s, err := NewSMTPSender("mail.local", "25", "", "", "bot@shop.local")
	require.NoError(t, err)
	s.sendMail = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("421 busy") }

	_, err = s.SendEmail(context.Background(), "alice@example.com", "x", "y")
	assert.ErrorContains(t, err, "421 busy")

	_, err = s.SendEmail(context.Background(), "alice@example.com\r\nBcc: eve@example.com", "x", "y")
	assert.Error(t, err)
}
