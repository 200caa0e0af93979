package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/inconshreveable/log15"
	"github.com/younsl/ebsmig/internal/logging"
	"github.com/younsl/ebsmig/internal/models"
	"github.com/younsl/ebsmig/pkg/utils"
)

// dryRunOperationCode is returned by EC2 when a dry-run request would have succeeded
const dryRunOperationCode = "DryRunOperation"

// EBSClient struct for EBS client scoped to one account and region
type EBSClient struct {
	client    EC2API
	accountID string
	region    string
	log       log15.Logger
}

// NewEBSClient creates a new EBSClient
func NewEBSClient(client EC2API, accountID, region string, logger log15.Logger) *EBSClient {
	return &EBSClient{
		client:    client,
		accountID: accountID,
		region:    region,
		log:       logging.OrDiscard(logger).New("account", accountID, "region", region),
	}
}

// AccountID returns the account the client is scoped to
func (c *EBSClient) AccountID() string {
	return c.accountID
}

// Region returns the region the client is scoped to
func (c *EBSClient) Region() string {
	return c.region
}

// InspectVolume fetches the current state of the target volume.
// Any error marks the volume type as unknown and the volume as exempted.
func (c *EBSClient) InspectVolume(ctx context.Context, target models.Target) models.VolumeRecord {
	record := models.VolumeRecord{
		AccountID:   c.accountID,
		VolumeID:    target.VolumeID,
		Region:      c.region,
		DesiredType: target.DesiredType,
	}

	result, err := c.client.DescribeVolumes(ctx, &ec2.DescribeVolumesInput{
		VolumeIds: []string{target.VolumeID},
	})
	if err == nil && len(result.Volumes) == 0 {
		err = fmt.Errorf("volume %s not found", target.VolumeID)
	}
	if err != nil {
		c.log.Warn("error describing volume, marking as exempted",
			"volume", target.VolumeID, "code", APIErrorCode(err), "err", err)
		record.CurrentType = models.VolumeTypeUnknown
		record.Exempted = true
		return record
	}

	volume := result.Volumes[0]
	record.CurrentType = string(volume.VolumeType)
	record.Exempted = isExempted(volume)
	record.SizeGiB = int(aws.ToInt32(volume.Size))
	c.log.Debug("inspected volume", "volume", target.VolumeID, "name", utils.GetName(volume.Tags),
		"type", record.CurrentType, "exempted", record.Exempted)

	// IOPS and throughput are only carried for the migration source type
	if volume.VolumeType == types.VolumeTypeGp2 {
		record.Iops = int(aws.ToInt32(volume.Iops))
		record.Throughput = int(aws.ToInt32(volume.Throughput))
	}

	return record
}

// ListVolumesByType returns every volume of currentType in the account and region.
// Records carry the requested iops and throughput rather than the live values.
func (c *EBSClient) ListVolumesByType(ctx context.Context, currentType, desiredType string, iops, throughput int) ([]models.VolumeRecord, error) {
	input := &ec2.DescribeVolumesInput{
		Filters: []types.Filter{
			{
				Name:   aws.String("volume-type"),
				Values: []string{currentType},
			},
		},
	}

	var records []models.VolumeRecord
	paginator := ec2.NewDescribeVolumesPaginator(c.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return records, fmt.Errorf("error querying EBS volumes: %w", err)
		}

		for _, volume := range page.Volumes {
			records = append(records, models.VolumeRecord{
				AccountID:   c.accountID,
				VolumeID:    aws.ToString(volume.VolumeId),
				Region:      c.region,
				CurrentType: string(volume.VolumeType),
				DesiredType: desiredType,
				Exempted:    isExempted(volume),
				Iops:        iops,
				Throughput:  throughput,
				SizeGiB:     int(aws.ToInt32(volume.Size)),
			})
		}
	}

	if len(records) == 0 {
		c.log.Info("no matching volumes found", "type", currentType)
	}
	return records, nil
}

// ModifyVolumeType changes the type of volumeID to targetType.
// An unknown target type fails without calling the API. Failed calls are not retried.
func (c *EBSClient) ModifyVolumeType(ctx context.Context, volumeID, targetType string, dryRun bool) models.ModifyResult {
	result := models.ModifyResult{
		VolumeID:   volumeID,
		TargetType: targetType,
	}
	log := c.log.New("volume", volumeID, "target", targetType)

	if !models.IsValidVolumeType(targetType) {
		result.Status = models.ModifyFailed
		result.Message = models.InvalidInputMessage
		result.Err = fmt.Errorf("target %q: %w", targetType, models.ErrInvalidVolumeType)
		log.Error("modify volume rejected", "message", result.Message)
		return result
	}

	out, err := c.client.ModifyVolume(ctx, &ec2.ModifyVolumeInput{
		VolumeId:   aws.String(volumeID),
		VolumeType: types.VolumeType(targetType),
		DryRun:     aws.Bool(dryRun),
	})
	if err != nil {
		if dryRun && APIErrorCode(err) == dryRunOperationCode {
			result.Status = models.ModifySuccess
			result.ModificationState = "dry-run"
			log.Info("dry-run modify volume would succeed")
			return result
		}
		result.Status = models.ModifyFailed
		result.Message = err.Error()
		result.Err = fmt.Errorf("error modifying volume %s: %w", volumeID, err)
		log.Error("modify volume failed", "code", APIErrorCode(err), "err", err)
		return result
	}

	if out.VolumeModification == nil {
		result.Status = models.ModifyFailed
		result.Message = "no volume modification returned"
		result.Err = fmt.Errorf("error modifying volume %s: %s", volumeID, result.Message)
		log.Error("modify volume failed", "message", result.Message)
		return result
	}

	modification := out.VolumeModification
	result.Status = models.ModifySuccess
	result.ModificationState = string(modification.ModificationState)
	result.OriginalType = string(modification.OriginalVolumeType)
	log.Info("modify volume requested", "state", result.ModificationState, "from", result.OriginalType)
	return result
}

func isExempted(volume types.Volume) bool {
	return utils.HasTagWithValue(volume.Tags, models.ExemptionTagKey, models.ExemptionTagValue)
}
