package secrets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/JCCallisto/holbertonschool-hbnb/pkg/errors"
)

func vaultServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/secret/data/hbnb", r.URL.Path)
		assert.Equal(t, "root", r.Header.Get("X-Vault-Token"))
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestApply_LoadsKVv2Secret(t *testing.T) {
	srv := vaultServer(t, http.StatusOK, `{"data":{"data":{"HBNB_TEST_JWT":"s3cret","HBNB_TEST_COST":12,"HBNB_TEST_KEEP":"vault"}}}`)
	t.Setenv("HBNB_TEST_JWT", "")
	t.Setenv("HBNB_TEST_COST", "")
	t.Setenv("HBNB_TEST_KEEP", "local")

	result, err := Apply(context.Background(), VaultConfig{
		Enabled: true, Addr: srv.URL, Token: "root", Mount: "secret", Path: "hbnb", KVVersion: 2, Timeout: defaultTestTimeout,
	})

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"HBNB_TEST_JWT", "HBNB_TEST_COST"}, result.Loaded)
	assert.Equal(t, []string{"HBNB_TEST_KEEP"}, result.Skipped)
	assert.Equal(t, "s3cret", getenv("HBNB_TEST_JWT"))
	assert.Equal(t, "12", getenv("HBNB_TEST_COST"))
	assert.Equal(t, "local", getenv("HBNB_TEST_KEEP"))
}

func TestApply_Disabled(t *testing.T) {
	result, err := Apply(context.Background(), VaultConfig{Enabled: false})
	require.NoError(t, err)
	assert.Empty(t, result.Loaded)
}

func TestFetch_ErrorStatusIsExternal(t *testing.T) {
	srv := vaultServer(t, http.StatusForbidden, `{"errors":["permission denied"]}`)

	_, err := Fetch(context.Background(), VaultConfig{
		Addr: srv.URL, Token: "root", Mount: "secret", Path: "hbnb", KVVersion: 2, Timeout: defaultTestTimeout,
	})

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
}

func TestFetch_IncompleteConfig(t *testing.T) {
	_, err := Fetch(context.Background(), VaultConfig{Addr: "http://vault"})
	assert.Error(t, err)
}

func TestSecretURL(t *testing.T) {
	assert.Equal(t, "http://v/v1/kv/app", secretURL(VaultConfig{Addr: "http://v/", Mount: "/kv/", Path: "/app", KVVersion: 1}))
	assert.Equal(t, "http://v/v1/secret/data/hbnb", secretURL(VaultConfig{Addr: "http://v", Mount: "secret", Path: "hbnb", KVVersion: 2}))
}

const defaultTestTimeout = 2 * time.Second

func getenv(key string) string { return os.Getenv(key) }
