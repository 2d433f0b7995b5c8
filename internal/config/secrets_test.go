package config

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSecretsClient struct {
	value string
	err   error

	lastSecretID string
}

func (m *mockSecretsClient) GetSecretValue(_ context.Context, input *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	m.lastSecretID = aws.ToString(input.SecretId)
	if m.err != nil {
		return nil, m.err
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: aws.String(m.value)}, nil
}

func TestResolveSecretsBarePassword(t *testing.T) {
	mock := &mockSecretsClient{value: "hunter2"}
	cfg := &Config{}
	cfg.Snowflake.PasswordSecretARN = "arn:aws:secretsmanager:us-east-1:123456789012:secret:sf"

	require.NoError(t, cfg.ResolveSecrets(context.Background(), mock))
	assert.Equal(t, "hunter2", cfg.Snowflake.Password)
	assert.Equal(t, cfg.Snowflake.PasswordSecretARN, mock.lastSecretID)
}

func TestResolveSecretsJSONPayload(t *testing.T) {
	mock := &mockSecretsClient{value: `{"username":"loader","password":"hunter2"}`}
	cfg := &Config{}
	cfg.Snowflake.PasswordSecretARN = "arn:aws:secretsmanager:us-east-1:123456789012:secret:sf"

	require.NoError(t, cfg.ResolveSecrets(context.Background(), mock))
	assert.Equal(t, "hunter2", cfg.Snowflake.Password)
}

func TestResolveSecretsNoARN(t *testing.T) {
	mock := &mockSecretsClient{value: "ignored"}
	cfg := &Config{}
	cfg.Snowflake.Password = "already-set"

	require.NoError(t, cfg.ResolveSecrets(context.Background(), mock))
	assert.Equal(t, "already-set", cfg.Snowflake.Password)
	assert.Empty(t, mock.lastSecretID)
}
