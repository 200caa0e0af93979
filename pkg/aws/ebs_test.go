package aws

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"
	"github.com/inconshreveable/log15"
	"github.com/younsl/ebsmig/internal/models"
)

const testAccount = "111122223333"

func TestInspectVolume(t *testing.T) {
	withThroughput := makeVolume("vol-b", types.VolumeTypeGp2)
	withThroughput.Throughput = aws.Int32(250)

	tests := []struct {
		name       string
		volume     types.Volume
		curType    string
		exempted   bool
		iops       int
		throughput int
	}{
		{"gp2 without throughput", makeVolume("vol-a", types.VolumeTypeGp2), "gp2", false, 300, 0},
		{"gp2 with throughput", withThroughput, "gp2", false, 300, 250},
		{"exempted gp2", makeVolume("vol-c", types.VolumeTypeGp2, "GP3_EXEMPTION_TAG", "exempted"), "gp2", true, 300, 0},
		{"io1 ignores iops", makeVolume("vol-d", types.VolumeTypeIo1), "io1", false, 0, 0},
	}

	for _, test := range tests {
		mock := &mockEC2Client{pages: singlePage(test.volume)}
		client := NewEBSClient(mock, testAccount, "us-east-1", nil)

		target := models.Target{AccountID: testAccount, VolumeID: aws.ToString(test.volume.VolumeId), Region: "us-east-1", DesiredType: "gp3"}
		record := client.InspectVolume(context.Background(), target)

		if record.CurrentType != test.curType {
			t.Errorf("%s: expected type %s, got %s", test.name, test.curType, record.CurrentType)
		}
		if record.Exempted != test.exempted {
			t.Errorf("%s: expected exempted %v, got %v", test.name, test.exempted, record.Exempted)
		}
		if record.Iops != test.iops || record.Throughput != test.throughput {
			t.Errorf("%s: expected iops/throughput %d/%d, got %d/%d", test.name, test.iops, test.throughput, record.Iops, record.Throughput)
		}
		if record.DesiredType != "gp3" || record.SizeGiB != 100 {
			t.Errorf("%s: unexpected record %+v", test.name, record)
		}
		if len(mock.describeInputs) != 1 || mock.describeInputs[0].VolumeIds[0] != target.VolumeID {
			t.Errorf("%s: expected describe by volume id", test.name)
		}
	}
}

func TestInspectVolumeErrorMarksExempted(t *testing.T) {
	tests := []struct {
		name string
		mock *mockEC2Client
	}{
		{"api error", &mockEC2Client{describeErr: &smithy.GenericAPIError{Code: "InvalidVolume.NotFound", Message: "not found"}}},
		{"empty result", &mockEC2Client{}},
	}

	for _, test := range tests {
		client := NewEBSClient(test.mock, testAccount, "us-east-1", nil)
		record := client.InspectVolume(context.Background(), models.Target{VolumeID: "vol-missing", DesiredType: "gp3"})

		if record.CurrentType != models.VolumeTypeUnknown {
			t.Errorf("%s: expected type NA, got %s", test.name, record.CurrentType)
		}
		if !record.Exempted {
			t.Errorf("%s: expected volume to be exempted", test.name)
		}
	}
}

func TestListVolumesByType(t *testing.T) {
	mock := &mockEC2Client{
		pages: map[string]*ec2.DescribeVolumesOutput{
			"": {
				Volumes:   []types.Volume{makeVolume("vol-1", types.VolumeTypeGp2)},
				NextToken: aws.String("page-2"),
			},
			"page-2": {
				Volumes: []types.Volume{makeVolume("vol-2", types.VolumeTypeGp2, "GP3_EXEMPTION_TAG", "exempted")},
			},
		},
	}
	client := NewEBSClient(mock, testAccount, "eu-west-1", nil)

	records, err := client.ListVolumesByType(context.Background(), "gp2", "gp3", 3000, 125)
	if err != nil {
		t.Fatal(err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 volumes across pages, got %d", len(records))
	}
	if records[0].VolumeID != "vol-1" || records[0].Exempted {
		t.Errorf("unexpected first record %+v", records[0])
	}
	if records[1].VolumeID != "vol-2" || !records[1].Exempted {
		t.Errorf("unexpected second record %+v", records[1])
	}
	for _, record := range records {
		if record.Iops != 3000 || record.Throughput != 125 || record.Region != "eu-west-1" || record.AccountID != testAccount {
			t.Errorf("record does not carry requested values: %+v", record)
		}
	}

	filter := mock.describeInputs[0].Filters[0]
	if aws.ToString(filter.Name) != "volume-type" || filter.Values[0] != "gp2" {
		t.Errorf("unexpected filter %s=%v", aws.ToString(filter.Name), filter.Values)
	}
}

func TestListVolumesByTypeLogsEmptyResultOnce(t *testing.T) {
	mock := &mockEC2Client{
		pages: map[string]*ec2.DescribeVolumesOutput{
			"":       {NextToken: aws.String("page-2")},
			"page-2": {NextToken: aws.String("page-3")},
			"page-3": {},
		},
	}

	var messages []string
	logger := log15.New()
	logger.SetHandler(log15.FuncHandler(func(r *log15.Record) error {
		messages = append(messages, r.Msg)
		return nil
	}))
	client := NewEBSClient(mock, testAccount, "us-east-1", logger)

	records, err := client.ListVolumesByType(context.Background(), "gp2", "gp3", 3000, 125)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 || len(mock.describeInputs) != 3 {
		t.Fatalf("expected 3 empty pages, got %d records from %d calls", len(records), len(mock.describeInputs))
	}

	count := 0
	for _, msg := range messages {
		if msg == "no matching volumes found" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected one empty result log line, got %d", count)
	}
}

func TestListVolumesByTypeError(t *testing.T) {
	mock := &mockEC2Client{describeErr: errors.New("boom")}
	client := NewEBSClient(mock, testAccount, "us-east-1", nil)

	if _, err := client.ListVolumesByType(context.Background(), "gp2", "gp3", 3000, 125); err == nil {
		t.Error("expected error")
	}
}

func TestModifyVolumeTypeInvalidType(t *testing.T) {
	mock := &mockEC2Client{}
	client := NewEBSClient(mock, testAccount, "us-east-1", nil)

	result := client.ModifyVolumeType(context.Background(), "vol-1", "gp9", false)

	if len(mock.modifyInputs) != 0 {
		t.Error("modify API must not be called for an invalid type")
	}
	if result.Status != models.ModifyFailed || result.Message != models.InvalidInputMessage {
		t.Errorf("unexpected result %+v", result)
	}
	if !errors.Is(result.Err, models.ErrInvalidVolumeType) {
		t.Errorf("expected ErrInvalidVolumeType, got %v", result.Err)
	}
}

func TestModifyVolumeType(t *testing.T) {
	mock := &mockEC2Client{
		modifyOutput: &ec2.ModifyVolumeOutput{
			VolumeModification: &types.VolumeModification{
				VolumeId:           aws.String("vol-1"),
				ModificationState:  types.VolumeModificationStateModifying,
				OriginalVolumeType: types.VolumeTypeGp2,
				TargetVolumeType:   types.VolumeTypeGp3,
			},
		},
	}
	client := NewEBSClient(mock, testAccount, "us-east-1", nil)

	result := client.ModifyVolumeType(context.Background(), "vol-1", "gp3", false)

	if result.Status != models.ModifySuccess || result.ModificationState != "modifying" || result.OriginalType != "gp2" {
		t.Errorf("unexpected result %+v", result)
	}
	if len(mock.modifyInputs) != 1 {
		t.Fatalf("expected one modify call, got %d", len(mock.modifyInputs))
	}
	input := mock.modifyInputs[0]
	if aws.ToString(input.VolumeId) != "vol-1" || input.VolumeType != types.VolumeTypeGp3 || aws.ToBool(input.DryRun) {
		t.Errorf("unexpected modify input %+v", input)
	}
}

func TestModifyVolumeTypeAPIError(t *testing.T) {
	mock := &mockEC2Client{modifyErr: &smithy.GenericAPIError{Code: "IncorrectModificationState", Message: "already modifying"}}
	client := NewEBSClient(mock, testAccount, "us-east-1", nil)

	result := client.ModifyVolumeType(context.Background(), "vol-1", "gp3", false)

	if result.Status != models.ModifyFailed || result.Message == "" {
		t.Errorf("unexpected result %+v", result)
	}
	if len(mock.modifyInputs) != 1 {
		t.Errorf("expected exactly one attempt, got %d", len(mock.modifyInputs))
	}
	if APIErrorCode(result.Err) != "IncorrectModificationState" {
		t.Errorf("expected wrapped API error, got %v", result.Err)
	}
}

func TestModifyVolumeTypeDryRunOperation(t *testing.T) {
	mock := &mockEC2Client{modifyErr: &smithy.GenericAPIError{Code: "DryRunOperation", Message: "would have succeeded"}}
	client := NewEBSClient(mock, testAccount, "us-east-1", nil)

	result := client.ModifyVolumeType(context.Background(), "vol-1", "gp3", true)

	if result.Status != models.ModifySuccess || result.ModificationState != "dry-run" {
		t.Errorf("unexpected result %+v", result)
	}
	if !aws.ToBool(mock.modifyInputs[0].DryRun) {
		t.Error("dry-run flag should be forwarded")
	}
}

func TestAPIErrorCode(t *testing.T) {
	if code := APIErrorCode(errors.New("plain")); code != "" {
		t.Errorf("expected empty code, got %q", code)
	}
	if code := APIErrorCode(&smithy.GenericAPIError{Code: "AccessDenied"}); code != "AccessDenied" {
		t.Errorf("expected AccessDenied, got %q", code)
	}
}
