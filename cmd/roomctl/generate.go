package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/phrazzld/studyrooms-api/internal/classifier"
	"github.com/phrazzld/studyrooms-api/internal/config"
	"github.com/phrazzld/studyrooms-api/internal/domain"
	"github.com/phrazzld/studyrooms-api/internal/generation"
	"github.com/phrazzld/studyrooms-api/internal/platform/llm"
	"github.com/phrazzld/studyrooms-api/internal/platform/logger"
	"github.com/phrazzld/studyrooms-api/internal/prompt"
	"github.com/phrazzld/studyrooms-api/internal/source"
	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <content>",
		Short: "Generate one room for a topic, text or URL and print it as JSON",
		Long: "Runs the same pipeline the server runs for a lesson: source " +
			"resolution, classification, the clarity overview and then the " +
			"requested room. Nothing is stored.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig(cmd)
			if err != nil {
				return err
			}
			if mode, _ := cmd.Flags().GetString("mode"); mode != "" {
				cfg.Server.BackendMode = mode
			}
			roomName, _ := cmd.Flags().GetString("room")
			room, err := domain.ParseRoomType(roomName)
			if err != nil {
				return err
			}
			showPrompt, _ := cmd.Flags().GetBool("show-prompt")

			content, err := runGeneration(cmd.Context(), cmd, cfg, strings.Join(args, " "), room, showPrompt)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(content)
		},
	}
	cmd.Flags().String("room", "clarity", "Room to generate: clarity, quiz, memory or test")
	cmd.Flags().String("mode", "", "Backend mode override: demo or live")
	cmd.Flags().Bool("show-prompt", false, "Print the composed prompt to stderr before generating")
	return cmd
}

func runGeneration(
	ctx context.Context,
	cmd *cobra.Command,
	cfg *config.Config,
	raw string,
	room domain.RoomType,
	showPrompt bool,
) (*domain.RoomContent, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	mode, err := domain.ParseBackendMode(cfg.Server.BackendMode)
	if err != nil {
		return nil, err
	}
	if !mode.IsDemo() {
		if err := config.ValidateSection(cfg.LLM); err != nil {
			return nil, err
		}
	}

	log, err := logger.SetupWithWriter(cfg.Server, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	ctx = logger.WithLogger(ctx, log)

	primary, secondary, err := llm.NewProviders(ctx, mode, cfg.LLM)
	if err != nil {
		return nil, err
	}
	client, err := generation.NewClient(primary, secondary, generation.ClientConfig{
		Timeout:   cfg.LLM.Timeout(),
		MaxTokens: cfg.LLM.MaxTokens,
	}, log)
	if err != nil {
		return nil, err
	}

	material, err := source.NewExtractor(mode, log).Resolve(ctx, raw)
	if err != nil {
		return nil, err
	}
	class := classifier.Classify(material.Content)
	in := prompt.Input{
		Content:   material.Content,
		Category:  class.Category,
		ExamFocus: class.ExamFocus,
	}
	log.Info("classified material",
		"source", string(material.Kind),
		"category", string(class.Category),
		"exam_focus", string(class.ExamFocus))

	p, err := prompt.ComposeOverview(in)
	if err != nil {
		return nil, err
	}
	overview, err := generateRoom(ctx, cmd, client, domain.RoomClarity, p, showPrompt && room == domain.RoomClarity)
	if err != nil || room == domain.RoomClarity {
		return overview, err
	}

	p, err = prompt.ComposeRoom(room, in, overview.Overview)
	if err != nil {
		return nil, err
	}
	return generateRoom(ctx, cmd, client, room, p, showPrompt)
}

func generateRoom(
	ctx context.Context,
	cmd *cobra.Command,
	client *generation.Client,
	room domain.RoomType,
	p prompt.Prompt,
	showPrompt bool,
) (*domain.RoomContent, error) {
	if showPrompt {
		fmt.Fprintf(cmd.ErrOrStderr(), "--- system ---\n%s\n--- user ---\n%s\n", p.System, p.User)
	}
	raw, err := client.Generate(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("generate %s: %w", room, err)
	}
	content, err := domain.DecodeRoomContent(room, raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", room, err)
	}
	return content, nil
}
