package config

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretsAPI is the subset of the Secrets Manager client used here.
type SecretsAPI interface {
	GetSecretValue(ctx context.Context, input *secretsmanager.GetSecretValueInput, opts ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// ResolveSecrets fills in Snowflake.Password from Secrets Manager when a
// PasswordSecretARN is configured. Passing a nil client builds one from the
// default AWS config chain.
func (c *Config) ResolveSecrets(ctx context.Context, client SecretsAPI) error {
	if c.Snowflake.PasswordSecretARN == "" || c.Snowflake.Password != "" {
		return nil
	}

	if client == nil {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(c.AWS.Region))
		if err != nil {
			return fmt.Errorf("loading AWS config: %w", err)
		}
		client = secretsmanager.NewFromConfig(awsCfg)
	}

	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(c.Snowflake.PasswordSecretARN),
	})
	if err != nil {
		return fmt.Errorf("fetching snowflake password secret: %w", err)
	}
	if out.SecretString == nil {
		return fmt.Errorf("secret %s has no string value", c.Snowflake.PasswordSecretARN)
	}

	// The secret is either a bare password or a JSON object with a
	// "password" field.
	var payload struct {
		Password string `json:"password"`
	}
	if err := json.Unmarshal([]byte(*out.SecretString), &payload); err == nil && payload.Password != "" {
		c.Snowflake.Password = payload.Password
		return nil
	}
	c.Snowflake.Password = *out.SecretString
	return nil
}
