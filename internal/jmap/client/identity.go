package client

import (
	"context"
	"strings"

	"jmapclient/internal/jmap/entity"
	"jmapclient/internal/jmap/protocol"
)

// GetIdentities fetches the sending personas available on the default
// account.
func (c *Client) GetIdentities(ctx context.Context) ([]entity.Identity, error) {
	if err := c.requireCapability(protocol.SubmissionCapability); err != nil {
		return nil, err
	}
	snap, err := c.current()
	if err != nil {
		return nil, err
	}

	calls := []protocol.MethodCall{
		{
			Name:      protocol.MethodIdentityGet,
			Arguments: protocol.GetRequest{AccountId: snap.accountId},
			CallId:    "0",
		},
	}
	responses, err := c.Do(ctx, []string{protocol.CoreCapability, protocol.SubmissionCapability}, calls)
	if err != nil {
		return nil, err
	}
	r, err := resultFor(responses, "0", protocol.MethodIdentityGet)
	if err != nil {
		return nil, err
	}

	var result struct {
		List []protocol.Identity `json:"list"`
	}
	if err := unmarshalArguments(r, &result); err != nil {
		return nil, err
	}

	identities := make([]entity.Identity, 0, len(result.List))
	for _, w := range result.List {
		identities = append(identities, entity.IdentityFromWire(w))
	}
	return identities, nil
}

// resolveIdentity picks the identity to send as: an explicit id wins, then
// the identity matching the from address, then the first one the server
// returned.
func resolveIdentity(identities []entity.Identity, explicitId, fromAddress string) (entity.Identity, error) {
	if len(identities) == 0 {
		return entity.Identity{}, ErrNoIdentities
	}
	if explicitId != "" {
		for _, id := range identities {
			if id.Id == explicitId {
				return id, nil
			}
		}
	}
	if fromAddress != "" {
		for _, id := range identities {
			if strings.EqualFold(id.Email, fromAddress) {
				return id, nil
			}
		}
	}
	return identities[0], nil
}
