package btcmarkets

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/base64"
	"strconv"
	"time"

	"bmkt/pkg/core"
)

// Authentication header names required on every signed call.
const (
	HeaderAPIKey    = "BM-AUTH-APIKEY"
	HeaderTimestamp = "BM-AUTH-TIMESTAMP"
	HeaderSignature = "BM-AUTH-SIGNATURE"
)

// fixedHeaders are sent on every request, signed or not.
var fixedHeaders = map[string]string{
	"Accept":         "application/json",
	"Accept-Charset": "UTF-8",
	"Content-Type":   "application/json",
}

// Sign computes the request signature over the canonical message
// method + path + timestamp + body. The path is the bare endpoint path
// without the query string, and body is exactly the bytes that will be
// transmitted (nil for requests without a payload).
func Sign(privateKey []byte, method, path, timestamp string, body []byte) string {
	mac := hmac.New(sha512.New, privateKey)
	mac.Write([]byte(method))
	mac.Write([]byte(path))
	mac.Write([]byte(timestamp))
	if len(body) > 0 {
		mac.Write(body)
	}
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// BuildAuthHeaders produces the full header set for a signed request using
// the current wall clock for the timestamp.
func BuildAuthHeaders(creds *core.Credentials, method, path string, body []byte) map[string]string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)
	return buildAuthHeadersAt(creds, method, path, ts, body)
}

func buildAuthHeadersAt(creds *core.Credentials, method, path, timestamp string, body []byte) map[string]string {
	headers := make(map[string]string, len(fixedHeaders)+3)
	for k, v := range fixedHeaders {
		headers[k] = v
	}
	headers[HeaderAPIKey] = creds.APIKey
	headers[HeaderTimestamp] = timestamp
	headers[HeaderSignature] = Sign(creds.PrivateKey, method, path, timestamp, body)
	return headers
}
