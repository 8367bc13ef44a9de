package horizon

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAddr = "GBVFTZL5HIPT4PFQVTZVIWR77V7LWYCXU4CLYWWHHOEXB64XPG5LDMTU"

func TestNativeBalance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts/"+testAddr, r.URL.Path)
		fmt.Fprint(w, `{"balances":[
			{"balance":"12.0000000","asset_type":"credit_alphanum4","asset_code":"USDC"},
			{"balance":"25.5000000","asset_type":"native"}
		]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, zerolog.Nop())
	bal, err := c.NativeBalance(context.Background(), testAddr)
	require.NoError(t, err)
	assert.Equal(t, "25.5000000", bal)
}

func TestNativeBalanceUnfundedAccount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, zerolog.Nop())
	bal, err := c.NativeBalance(context.Background(), testAddr)
	require.NoError(t, err)
	assert.Equal(t, "0", bal)
}

func TestNativeBalanceNoNativeEntry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"balances":[{"balance":"3.0","asset_type":"credit_alphanum4"}]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, zerolog.Nop())
	bal, err := c.NativeBalance(context.Background(), testAddr)
	require.NoError(t, err)
	assert.Equal(t, "0", bal)
}

func TestNativeBalanceServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, zerolog.Nop())
	_, err := c.NativeBalance(context.Background(), testAddr)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestNativeBalanceTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, zerolog.Nop()).WithTimeout(20 * time.Millisecond)
	_, err := c.NativeBalance(context.Background(), testAddr)
	assert.ErrorIs(t, err, ErrUnavailable)
}
