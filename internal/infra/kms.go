package infra

import (
	"context"
	"encoding/base64"
	"fmt"

	kms "cloud.google.com/go/kms/apiv1"
	kmspb "cloud.google.com/go/kms/apiv1/kmspb"

	"reservation-service/config"
)

// KMSClient はCloud KMSクライアントをラップする。
type KMSClient struct {
	client  *kms.KeyManagementClient
	keyName string
}

// NewKMSClient は指定されたキー名でKMSClientを生成する。
func NewKMSClient(ctx context.Context, keyName string) (*KMSClient, error) {
	if keyName == "" {
		return nil, fmt.Errorf("KMS key name is required")
	}

	client, err := kms.NewKeyManagementClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating KMS client: %w", err)
	}

	return &KMSClient{
		client:  client,
		keyName: keyName,
	}, nil
}

// Encrypt は平文をCloud KMSで暗号化する。
func (c *KMSClient) Encrypt(ctx context.Context, plaintext []byte) ([]byte, error) {
	req := &kmspb.EncryptRequest{
		Name:      c.keyName,
		Plaintext: plaintext,
	}
	resp, err := c.client.Encrypt(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("encrypting: %w", err)
	}
	return resp.Ciphertext, nil
}

// Decrypt は暗号文をCloud KMSで復号する。
func (c *KMSClient) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	req := &kmspb.DecryptRequest{
		Name:       c.keyName,
		Ciphertext: ciphertext,
	}
	resp, err := c.client.Decrypt(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("decrypting: %w", err)
	}
	return resp.Plaintext, nil
}

// Close はKMSクライアントを閉じる。
func (c *KMSClient) Close() error {
	return c.client.Close()
}

// Encrypter はシークレットの暗号化のインターフェース。
type Encrypter interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
}

// Decrypter はシークレットの復号のインターフェース。
type Decrypter interface {
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
}

// SecretNames はKMSで暗号化して渡せる環境変数名。
var SecretNames = []string{"ENCRYPTION_KEY", "ENCRYPTION_IV", "JWT_SECRET", "COOKIE_SECRET"}

// IsSecretName はnameがKMSで暗号化して渡せる環境変数名かを返す。
func IsSecretName(name string) bool {
	for _, n := range SecretNames {
		if n == name {
			return true
		}
	}
	return false
}

// WrapSecret は平文のシークレットをKMSで暗号化し、UnwrapSecretsが受け付けるBase64文字列を返す。
func WrapSecret(ctx context.Context, e Encrypter, plaintext []byte) (string, error) {
	if len(plaintext) == 0 {
		return "", fmt.Errorf("secret value is empty")
	}
	ciphertext, err := e.Encrypt(ctx, plaintext)
	if err != nil {
		return "", fmt.Errorf("wrapping secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// UnwrapSecrets はKMSで暗号化された（Base64の）シークレットを復号し、設定を平文で上書きする。
// 空のシークレットはそのままにする。
func UnwrapSecrets(ctx context.Context, d Decrypter, cfg *config.Config) error {
	values := map[string]*string{
		"ENCRYPTION_KEY": &cfg.EncryptionKey,
		"ENCRYPTION_IV":  &cfg.EncryptionIV,
		"JWT_SECRET":     &cfg.JWTSecret,
		"COOKIE_SECRET":  &cfg.CookieSecret,
	}

	for _, name := range SecretNames {
		value := values[name]
		if *value == "" {
			continue
		}
		ciphertext, err := base64.StdEncoding.DecodeString(*value)
		if err != nil {
			return fmt.Errorf("decoding %s: %w", name, err)
		}
		plaintext, err := d.Decrypt(ctx, ciphertext)
		if err != nil {
			return fmt.Errorf("unwrapping %s: %w", name, err)
		}
		*value = string(plaintext)
	}
	return nil
}
