package utils

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// GetTagValue returns the value of a tag with the given key
func GetTagValue(tags []types.Tag, key string) string {
	for _, tag := range tags {
		if aws.ToString(tag.Key) == key {
			return aws.ToString(tag.Value)
		}
	}
	return ""
}

// GetName returns the value of the Name tag
func GetName(tags []types.Tag) string {
	return GetTagValue(tags, "Name")
}

// HasTagWithValue checks if a resource has a tag with the given key and value.
// Every tag is checked, so a duplicated key with a matching value still counts.
func HasTagWithValue(tags []types.Tag, key, value string) bool {
	for _, tag := range tags {
		if tag.Key != nil && *tag.Key == key && tag.Value != nil && *tag.Value == value {
			return true
		}
	}
	return false
}
