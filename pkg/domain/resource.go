package common

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type ResourceType string

const (
	ResourceTypePool         ResourceType = "Pools"
	ResourceTypeMember       ResourceType = "Members"
	ResourceTypeChallenge    ResourceType = "Challenges"
	ResourceTypeContribution ResourceType = "Contributions"
	ResourceTypeMiningEvent  ResourceType = "MiningEvents"
)

var ResourceKeyMap = map[ResourceType]string{
	ResourceTypePool:         "pool_id",
	ResourceTypeMember:       "member_id",
	ResourceTypeChallenge:    "challenge_id",
	ResourceTypeContribution: "contribution_id",
	ResourceTypeMiningEvent:  "mining_event_id",
}

func GetResourceFieldID(resourcePart string) (string, error) {
	for k, v := range ResourceKeyMap {
		if strings.EqualFold(fmt.Sprint(k), resourcePart) {
			return v, nil
		}
	}

	return "", fmt.Errorf("failed to parse ResourceIDField: Unknown resource %s", resourcePart)
}

type Resource struct {
	ID   uuid.UUID    `json:"id" bson:"_id"`
	Type ResourceType `json:"type" bson:"type"`
}
