package aws

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	ststypes "github.com/aws/aws-sdk-go-v2/service/sts/types"
	"github.com/younsl/ebsmig/internal/logging"
)

func newTestProvider(stsClient STSAPI, captured *aws.Config) *SessionProvider {
	return &SessionProvider{
		cfg:         aws.Config{Region: "us-east-1"},
		sts:         stsClient,
		roleSuffix:  DefaultRoleSuffix,
		sessionName: DefaultSessionName,
		newEC2: func(c aws.Config) EC2API {
			if captured != nil {
				*captured = c
			}
			return &mockEC2Client{}
		},
		log: logging.Discard(),
	}
}

func TestRoleARN(t *testing.T) {
	expected := "arn:aws:iam::111122223333:role/111122223333-ebs_migration_role"
	if arn := RoleARN("111122223333", DefaultRoleSuffix); arn != expected {
		t.Errorf("expected %s, got %s", expected, arn)
	}
}

func TestAssume(t *testing.T) {
	stsClient := &mockSTSClient{
		output: &sts.AssumeRoleOutput{
			Credentials: &ststypes.Credentials{
				AccessKeyId:     aws.String("AKIDEXAMPLE"),
				SecretAccessKey: aws.String("secret"),
				SessionToken:    aws.String("token"),
			},
		},
	}
	var cfg aws.Config
	provider := newTestProvider(stsClient, &cfg)

	result := provider.Assume(context.Background(), testAccount, "ap-northeast-2")
	if !result.OK() {
		t.Fatalf("expected session, got %v", result.Err)
	}
	if result.Client.AccountID() != testAccount || result.Client.Region() != "ap-northeast-2" {
		t.Errorf("client scoped to %s/%s", result.Client.AccountID(), result.Client.Region())
	}

	input := stsClient.inputs[0]
	if aws.ToString(input.RoleArn) != RoleARN(testAccount, DefaultRoleSuffix) || aws.ToString(input.RoleSessionName) != DefaultSessionName {
		t.Errorf("unexpected assume role input %+v", input)
	}

	if cfg.Region != "ap-northeast-2" {
		t.Errorf("expected client config region ap-northeast-2, got %s", cfg.Region)
	}
	creds, err := cfg.Credentials.Retrieve(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if creds.AccessKeyID != "AKIDEXAMPLE" || creds.SessionToken != "token" {
		t.Errorf("client does not use assumed credentials: %+v", creds)
	}
}

func TestAssumeNoCredentials(t *testing.T) {
	provider := newTestProvider(&mockSTSClient{output: &sts.AssumeRoleOutput{}}, nil)

	result := provider.Assume(context.Background(), testAccount, "us-east-1")
	if result.OK() {
		t.Fatal("expected failed session")
	}
	if !errors.Is(result.Err, ErrNoCredentials) {
		t.Errorf("expected ErrNoCredentials, got %v", result.Err)
	}
	if result.Client != nil {
		t.Error("failed session must not carry a client")
	}
}

func TestAssumeError(t *testing.T) {
	provider := newTestProvider(&mockSTSClient{err: errors.New("access denied")}, nil)

	result := provider.Assume(context.Background(), testAccount, "us-east-1")
	if result.OK() || result.Err == nil {
		t.Fatal("expected failed session")
	}
}

type countingAssumer struct {
	calls map[string]int
	fail  map[string]bool
}

func (a *countingAssumer) Assume(ctx context.Context, accountID, region string) SessionResult {
	a.calls[accountID+"/"+region]++
	if a.fail[accountID] {
		return SessionResult{AccountID: accountID, Region: region, Err: ErrNoCredentials}
	}
	return SessionResult{
		AccountID: accountID,
		Region:    region,
		Client:    NewEBSClient(&mockEC2Client{}, accountID, region, nil),
	}
}

func TestSessionCache(t *testing.T) {
	assumer := &countingAssumer{calls: map[string]int{}, fail: map[string]bool{"444455556666": true}}
	cache := NewSessionCache()
	ctx := context.Background()

	// Revisiting an earlier account must not assume the role again
	for _, account := range []string{"111122223333", "111122223333", "444455556666", "111122223333", "444455556666"} {
		cache.Get(ctx, assumer, account, "us-east-1")
	}
	cache.Get(ctx, assumer, "111122223333", "us-west-2")

	if assumer.calls["111122223333/us-east-1"] != 1 || assumer.calls["444455556666/us-east-1"] != 1 {
		t.Errorf("expected one assume per account, got %v", assumer.calls)
	}
	if assumer.calls["111122223333/us-west-2"] != 1 {
		t.Errorf("expected a separate session per region, got %v", assumer.calls)
	}
	if cache.Len() != 3 {
		t.Errorf("expected 3 cached sessions, got %d", cache.Len())
	}

	failed := cache.Failed()
	if len(failed) != 1 || failed[0].AccountID != "444455556666" {
		t.Errorf("unexpected failed sessions %+v", failed)
	}
}
