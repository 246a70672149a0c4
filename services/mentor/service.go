package mentor

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"policypath/services"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	model     = anthropic.ModelClaude4Sonnet20250514
	maxTokens = 2048

	// One tool round is enough for a vault lookup; the loop is bounded so a
	// chatty model cannot spin the turn forever.
	maxToolRounds = 3
)

// Service is the chat-mode remote model collaborator.
type Service struct {
	client *anthropic.Client
	vault  *services.VaultService
}

func NewService(anthropicAPIKey string, vault *services.VaultService) (*Service, error) {
	client := anthropic.NewClient(option.WithAPIKey(anthropicAPIKey))

	return &Service{
		client: &client,
		vault:  vault,
	}, nil
}

// Chat sends one assembled turn to the mentor and returns the raw reply
// text, which may embed the hidden vault channel.
func (s *Service) Chat(ctx context.Context, ownerID string, payload *services.TurnPayload) (string, error) {
	log.Printf("[INFO] Starting mentor chat turn for owner %s", ownerID)

	tools := []MentorTool{
		NewVaultLookupTool(s.vault, ownerID),
	}

	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(payload.Prompt())),
	}

	for round := 0; round < maxToolRounds; round++ {
		response, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     model,
			MaxTokens: maxTokens,
			System: []anthropic.TextBlockParam{
				{Text: payload.Instructions},
			},
			Messages: messages,
			Tools:    buildToolSpecs(tools),
		})
		if err != nil {
			log.Printf("[ERROR] Failed to call Anthropic API: %v", err)
			return "", fmt.Errorf("failed to call Anthropic API: %w", err)
		}

		text := ""
		var toolUses []anthropic.ToolUseBlock
		for _, block := range response.Content {
			switch block := block.AsAny().(type) {
			case anthropic.TextBlock:
				text += block.Text
			case anthropic.ToolUseBlock:
				toolUses = append(toolUses, block)
			}
		}

		if len(toolUses) == 0 {
			log.Printf("[INFO] Mentor chat turn completed for owner %s", ownerID)
			return text, nil
		}

		messages = append(messages, response.ToParam())

		resultBlocks := []anthropic.ContentBlockParamUnion{}
		for _, toolUse := range toolUses {
			log.Printf("[INFO] Mentor requested tool: %s", toolUse.Name)

			inputJSON, _ := json.Marshal(toolUse.Input)
			result, err := executeTool(ctx, tools, toolUse.Name, string(inputJSON))
			if err != nil {
				log.Printf("[ERROR] Tool execution failed: %v", err)
				result = fmt.Sprintf("Error: %v", err)
			}

			resultBlocks = append(resultBlocks, anthropic.NewToolResultBlock(toolUse.ID, result, err != nil))
		}
		messages = append(messages, anthropic.NewUserMessage(resultBlocks...))
	}

	return "", fmt.Errorf("mentor exceeded %d tool rounds without a final reply", maxToolRounds)
}

func buildToolSpecs(tools []MentorTool) []anthropic.ToolUnionParam {
	var specs []anthropic.ToolUnionParam
	for _, tool := range tools {
		specs = append(specs, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        tool.Name(),
				Description: anthropic.String(tool.Description()),
				InputSchema: tool.InputSchema(),
			},
		})
	}
	return specs
}

func executeTool(ctx context.Context, tools []MentorTool, name, input string) (string, error) {
	for _, tool := range tools {
		if tool.Name() == name {
			return tool.Call(ctx, input)
		}
	}
	return "", fmt.Errorf("tool %s not found", name)
}
