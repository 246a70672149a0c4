package mentor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"policypath/services"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/invopop/jsonschema"
)

// MentorTool is a capability the mentor may call mid-turn.
type MentorTool interface {
	Name() string
	Description() string
	Call(ctx context.Context, input string) (string, error)
	InputSchema() anthropic.ToolInputSchemaParam
}

type VaultLookupToolInput struct{}

// VaultLookupTool lets the mentor see which concepts the learner has
// already mastered, so review requests can reference real progress. The
// owner is bound at turn start; the model never picks whose vault to read.
type VaultLookupTool struct {
	vault   *services.VaultService
	ownerID string
}

func NewVaultLookupTool(vault *services.VaultService, ownerID string) VaultLookupTool {
	return VaultLookupTool{vault: vault, ownerID: ownerID}
}

func (t VaultLookupTool) Name() string {
	return "list_mastered_concepts"
}

func (t VaultLookupTool) Description() string {
	return "Lists the concepts the learner has already mastered, with title, summary notes and the date mastered"
}

func (t VaultLookupTool) Call(ctx context.Context, input string) (string, error) {
	var params VaultLookupToolInput
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		return "", fmt.Errorf("failed to parse vault lookup input: %v", err)
	}

	entries, err := t.vault.GetEntries(t.ownerID)
	if err != nil {
		return "", fmt.Errorf("failed to read vault: %v", err)
	}

	type conceptPreview struct {
		Title      string `json:"title"`
		Notes      string `json:"notes"`
		MasteredAt string `json:"mastered_at"`
	}

	var previews []conceptPreview
	for _, entry := range entries {
		previews = append(previews, conceptPreview{
			Title:      entry.Title,
			Notes:      entry.Notes,
			MasteredAt: entry.CreatedAt.Format(time.RFC3339),
		})
	}

	result, err := json.Marshal(previews)
	if err != nil {
		return "", fmt.Errorf("failed to marshal concept previews: %v", err)
	}

	return string(result), nil
}

func (t VaultLookupTool) InputSchema() anthropic.ToolInputSchemaParam {
	return generateAnthropicSchema[VaultLookupToolInput]()
}

func generateAnthropicSchema[T any]() anthropic.ToolInputSchemaParam {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)

	return anthropic.ToolInputSchemaParam{
		Properties: schema.Properties,
	}
}
