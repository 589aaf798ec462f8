// Package storage issues signed upload URLs for video files. The URL grants
// a direct PUT to the storage frontend without exposing credentials.
package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/coursehive/coursehive/internal/config"
	"go.uber.org/fx"
)

type Signer struct {
	baseURL string
	key     []byte
	ttl     time.Duration
}

func NewSigner(cfg config.Config) *Signer {
	return &Signer{
		baseURL: cfg.UploadBaseURL,
		key:     []byte(cfg.UploadSignKey),
		ttl:     time.Duration(cfg.UploadTTLMinutes) * time.Minute,
	}
}

// SignedUploadURL returns a PUT target for the given object key. The
// signature covers the key and the expiry so neither can be swapped.
func (s *Signer) SignedUploadURL(objectKey string, now time.Time) string {
	expires := now.Add(s.ttl).Unix()
	sig := s.sign(objectKey, expires)
	return fmt.Sprintf("%s/%s?expires=%d&signature=%s",
		s.baseURL, url.PathEscape(objectKey), expires, sig)
}

// Verify checks the signature and expiry of an upload callback.
func (s *Signer) Verify(objectKey string, expires int64, signature string, now time.Time) bool {
	if now.Unix() > expires {
		return false
	}
	expected := s.sign(objectKey, expires)
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (s *Signer) sign(objectKey string, expires int64) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(objectKey))
	mac.Write([]byte{'\n'})
	mac.Write([]byte(strconv.FormatInt(expires, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}

var Module = fx.Module("providers.storage",
	fx.Provide(NewSigner),
)
