package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type JWKS struct {
	Keys []JWK `json:"keys"`
}

type JWK struct {
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	X   string `json:"x"`
	Y   string `json:"y"`
	Alg string `json:"alg"`
	Use string `json:"use"`
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "devtoken",
		Short:        "Local JWT helpers for coursehub development",
		SilenceUsage: true,
	}
	root.AddCommand(mintCmd(), jwksCmd())
	return root
}

func mintCmd() *cobra.Command {
	var (
		secret string
		sub    string
		email  string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Print an HS256 token accepted by a server sharing --secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(sub)
			if err != nil {
				return fmt.Errorf("--sub must be a UUID: %w", err)
			}
			token, err := mintToken(secret, userID, email, ttl, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", os.Getenv("SUPABASE_JWT_SECRET"), "HMAC secret")
	cmd.Flags().StringVar(&sub, "sub", uuid.NewString(), "user id")
	cmd.Flags().StringVar(&email, "email", "dev@example.com", "email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}

func jwksCmd() *cobra.Command {
	var url string
	cmd := &cobra.Command{
		Use:   "jwks-pem",
		Short: "Convert the first ES256 key of a JWKS endpoint to a PEM public key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := http.Get(url)
			if err != nil {
				return fmt.Errorf("fetching JWKS: %w", err)
			}
			defer func() { _ = resp.Body.Close() }()

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("reading response: %w", err)
			}
			pemBytes, err := jwksToPEM(body)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(pemBytes))
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "http://127.0.0.1:54321/auth/v1/.well-known/jwks.json", "JWKS endpoint")
	return cmd
}

func mintToken(secret string, userID uuid.UUID, email string, ttl time.Duration, now time.Time) (string, error) {
	if secret == "" {
		return "", errors.New("a secret is required")
	}
	claims := jwt.MapClaims{
		"sub":   userID.String(),
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func jwksToPEM(body []byte) ([]byte, error) {
	var jwks JWKS
	if err := json.Unmarshal(body, &jwks); err != nil {
		return nil, fmt.Errorf("parsing JWKS: %w", err)
	}
	if len(jwks.Keys) == 0 {
		return nil, errors.New("no keys found in JWKS")
	}

	key := jwks.Keys[0]
	if key.Kty != "EC" || key.Alg != "ES256" {
		return nil, fmt.Errorf("expected EC/ES256 key, got %s/%s", key.Kty, key.Alg)
	}

	xBytes, err := base64.RawURLEncoding.DecodeString(key.X)
	if err != nil {
		return nil, fmt.Errorf("decoding X coordinate: %w", err)
	}
	yBytes, err := base64.RawURLEncoding.DecodeString(key.Y)
	if err != nil {
		return nil, fmt.Errorf("decoding Y coordinate: %w", err)
	}

	publicKey := &ecdsa.PublicKey{
		Curve: elliptic.P256(),
		X:     new(big.Int).SetBytes(xBytes),
		Y:     new(big.Int).SetBytes(yBytes),
	}
	derBytes, err := x509.MarshalPKIXPublicKey(publicKey)
	if err != nil {
		return nil, fmt.Errorf("marshaling public key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: derBytes}), nil
}
