// Package jwt manages pass-token issuance and verification using configured signing keys
// and strict validation semantics suitable for low-latency verification paths.
//
// A pass token is the signed proof handed out after a captcha is solved. Downstream
// services verify it offline instead of calling back into the challenge store.
package jwt
