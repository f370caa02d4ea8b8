package main

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/document"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/infrastructure/vision"
	"github.com/spf13/cobra"
)

var extractType string

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Run vision extraction on a local file and print the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		docType, err := document.ParseType(extractType)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		contentType := contentTypeOf(args[0], data)
		if !document.IsSupportedContentType(contentType) {
			return fmt.Errorf("%s: unsupported content type %s", args[0], contentType)
		}

		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := context.Background()
		client, err := vision.NewClient(ctx, vision.ClientConfig{
			APIKey:      cfg.Vision.APIKey,
			Model:       cfg.Vision.Model,
			Timeout:     cfg.Vision.Timeout,
			Temperature: cfg.Vision.Temperature,
			MaxRetries:  cfg.Vision.MaxRetries,
		}, log)
		if err != nil {
			return err
		}

		extraction, err := vision.NewExtractor(client, log, 0).Extract(ctx, data, contentType, docType)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), extraction)
	},
}

func init() {
	extractCmd.Flags().StringVarP(&extractType, "type", "t", string(document.TypeInvoice), "document type: invoice, purchase_order or other")
	rootCmd.AddCommand(extractCmd)
}

// contentTypeOf prefers the file extension and falls back to sniffing
func contentTypeOf(path string, data []byte) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}
