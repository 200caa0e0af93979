package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

type mockEC2Client struct {
	// describe pages keyed by the NextToken of the request, "" for the first page
	pages       map[string]*ec2.DescribeVolumesOutput
	describeErr error

	modifyOutput *ec2.ModifyVolumeOutput
	modifyErr    error

	describeInputs []*ec2.DescribeVolumesInput
	modifyInputs   []*ec2.ModifyVolumeInput
}

func (m *mockEC2Client) DescribeVolumes(ctx context.Context, params *ec2.DescribeVolumesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVolumesOutput, error) {
	m.describeInputs = append(m.describeInputs, params)
	if m.describeErr != nil {
		return nil, m.describeErr
	}
	if page, ok := m.pages[aws.ToString(params.NextToken)]; ok {
		return page, nil
	}
	return &ec2.DescribeVolumesOutput{}, nil
}

func (m *mockEC2Client) ModifyVolume(ctx context.Context, params *ec2.ModifyVolumeInput, optFns ...func(*ec2.Options)) (*ec2.ModifyVolumeOutput, error) {
	m.modifyInputs = append(m.modifyInputs, params)
	if m.modifyErr != nil {
		return nil, m.modifyErr
	}
	return m.modifyOutput, nil
}

type mockSTSClient struct {
	output *sts.AssumeRoleOutput
	err    error
	inputs []*sts.AssumeRoleInput
}

func (m *mockSTSClient) AssumeRole(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error) {
	m.inputs = append(m.inputs, params)
	return m.output, m.err
}

func makeVolume(id string, volumeType types.VolumeType, tags ...string) types.Volume {
	volume := types.Volume{
		VolumeId:   aws.String(id),
		VolumeType: volumeType,
		Size:       aws.Int32(100),
		Iops:       aws.Int32(300),
	}
	for i := 0; i+1 < len(tags); i += 2 {
		volume.Tags = append(volume.Tags, types.Tag{Key: aws.String(tags[i]), Value: aws.String(tags[i+1])})
	}
	return volume
}

func singlePage(volumes ...types.Volume) map[string]*ec2.DescribeVolumesOutput {
	return map[string]*ec2.DescribeVolumesOutput{
		"": {Volumes: volumes},
	}
}
