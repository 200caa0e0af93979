package aws

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/inconshreveable/log15"
	"github.com/younsl/ebsmig/internal/logging"
)

const (
	// DefaultRoleSuffix is appended to the account id to name the migration role
	DefaultRoleSuffix = "ebs_migration_role"

	// DefaultSessionName is the role session name used for AssumeRole
	DefaultSessionName = "EBS_migration_session"
)

// ErrNoCredentials is returned when AssumeRole succeeds without returning credentials
var ErrNoCredentials = errors.New("role assumption returned no credentials")

// SessionOptions configures role assumption
type SessionOptions struct {
	RoleSuffix  string
	SessionName string
}

// SessionResult is either an established session with a client, or the reason it failed.
// Callers must check OK before using Client.
type SessionResult struct {
	AccountID string
	Region    string
	Client    *EBSClient
	Err       error
}

// OK reports whether the session was established
func (r SessionResult) OK() bool {
	return r.Err == nil && r.Client != nil
}

// Assumer establishes a session in a target account and region
type Assumer interface {
	Assume(ctx context.Context, accountID, region string) SessionResult
}

// SessionProvider assumes the migration role in each target account
type SessionProvider struct {
	cfg         aws.Config
	sts         STSAPI
	roleSuffix  string
	sessionName string
	newEC2      func(aws.Config) EC2API
	log         log15.Logger
}

// LoadBaseConfig loads the credentials used to call STS, optionally from a named profile
func LoadBaseConfig(ctx context.Context, profile, region string) (aws.Config, error) {
	opts := make([]func(*config.LoadOptions) error, 0)

	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("error loading AWS config: %w", err)
	}
	return cfg, nil
}

// NewSessionProvider creates a SessionProvider that calls STS with cfg's credentials
func NewSessionProvider(cfg aws.Config, opts SessionOptions, logger log15.Logger) *SessionProvider {
	if opts.RoleSuffix == "" {
		opts.RoleSuffix = DefaultRoleSuffix
	}
	if opts.SessionName == "" {
		opts.SessionName = DefaultSessionName
	}

	return &SessionProvider{
		cfg:         cfg,
		sts:         sts.NewFromConfig(cfg),
		roleSuffix:  opts.RoleSuffix,
		sessionName: opts.SessionName,
		newEC2: func(c aws.Config) EC2API {
			return ec2.NewFromConfig(c)
		},
		log: logging.OrDiscard(logger),
	}
}

// RoleARN builds the ARN of the migration role in accountID
func RoleARN(accountID, roleSuffix string) string {
	return fmt.Sprintf("arn:aws:iam::%s:role/%s-%s", accountID, accountID, roleSuffix)
}

// Assume assumes the migration role in accountID and returns an EC2 client for region
func (p *SessionProvider) Assume(ctx context.Context, accountID, region string) SessionResult {
	result := SessionResult{AccountID: accountID, Region: region}
	roleARN := RoleARN(accountID, p.roleSuffix)
	log := p.log.New("account", accountID, "region", region)

	out, err := p.sts.AssumeRole(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(roleARN),
		RoleSessionName: aws.String(p.sessionName),
	})
	if err != nil {
		log.Error("role assumption failed", "role", roleARN, "code", APIErrorCode(err), "err", err)
		result.Err = fmt.Errorf("error assuming role %s: %w", roleARN, err)
		return result
	}

	creds := out.Credentials
	if creds == nil || creds.AccessKeyId == nil || creds.SecretAccessKey == nil {
		log.Error("role assumption failed", "role", roleARN, "err", ErrNoCredentials)
		result.Err = fmt.Errorf("error assuming role %s: %w", roleARN, ErrNoCredentials)
		return result
	}

	cfg := p.cfg.Copy()
	cfg.Region = region
	cfg.Credentials = aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
		aws.ToString(creds.AccessKeyId),
		aws.ToString(creds.SecretAccessKey),
		aws.ToString(creds.SessionToken),
	))

	log.Debug("assumed role", "role", roleARN)
	result.Client = NewEBSClient(p.newEC2(cfg), accountID, region, p.log)
	return result
}

// SessionCache maps an account and region to the session established for it.
// Failed sessions are cached too, so a broken account is assumed only once per run.
type SessionCache struct {
	entries map[string]SessionResult
}

// NewSessionCache creates an empty SessionCache
func NewSessionCache() *SessionCache {
	return &SessionCache{entries: make(map[string]SessionResult)}
}

// Get returns the cached session for accountID and region, assuming the role on a miss
func (c *SessionCache) Get(ctx context.Context, assumer Assumer, accountID, region string) SessionResult {
	key := accountID + "/" + region
	if result, ok := c.entries[key]; ok {
		return result
	}

	result := assumer.Assume(ctx, accountID, region)
	c.entries[key] = result
	return result
}

// Len returns the number of cached sessions, failed ones included
func (c *SessionCache) Len() int {
	return len(c.entries)
}

// Failed returns the sessions that could not be established, sorted by account and region
func (c *SessionCache) Failed() []SessionResult {
	var failed []SessionResult
	for _, result := range c.entries {
		if !result.OK() {
			failed = append(failed, result)
		}
	}
	sort.Slice(failed, func(i, j int) bool {
		if failed[i].AccountID != failed[j].AccountID {
			return failed[i].AccountID < failed[j].AccountID
		}
		return failed[i].Region < failed[j].Region
	})
	return failed
}
