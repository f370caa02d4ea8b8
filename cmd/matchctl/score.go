package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	matchingapp "github.com/madhugraj/transact-ai-nexus-sub002/internal/application/matching"
	procurementapp "github.com/madhugraj/transact-ai-nexus-sub002/internal/application/procurement"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/matching"
	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score <purchase-order.json> <invoice.json>",
	Short: "Compare a purchase order with an invoice offline",
	Long: `Reads a purchase order and an invoice in the API request format and
prints the field scores, the confidence score and the resulting status.
Weights and thresholds come from the matching section of the config.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		out, err := scoreFiles(matching.NewMatcher(cfg.Matching.ComparisonConfig()), args[0], args[1])
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), out)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}

// scoreFiles builds both records with the same validation the API applies
func scoreFiles(matcher *matching.Matcher, poPath, invoicePath string) (*matchingapp.CandidateResponse, error) {
	var poReq procurementapp.CreatePurchaseOrderRequest
	if err := readJSON(poPath, &poReq); err != nil {
		return nil, err
	}
	var invReq procurementapp.CreateInvoiceRequest
	if err := readJSON(invoicePath, &invReq); err != nil {
		return nil, err
	}

	// records never leave the process, any user id will do
	userID := uuid.New()
	po, err := procurementapp.BuildPurchaseOrder(userID, poReq)
	if err != nil {
		return nil, fmt.Errorf("purchase order %s: %w", poPath, err)
	}
	inv, err := procurementapp.BuildInvoice(userID, invReq)
	if err != nil {
		return nil, fmt.Errorf("invoice %s: %w", invoicePath, err)
	}

	c := matcher.Match(matching.RecordFromPurchaseOrder(po), matching.RecordFromInvoice(inv))
	discrepancies := c.Comparison.Discrepancies
	if discrepancies == nil {
		discrepancies = make([]matching.Discrepancy, 0)
	}
	return &matchingapp.CandidateResponse{
		PurchaseOrderID: po.ID,
		PONumber:        po.PONumber,
		VendorName:      po.VendorName,
		TotalAmount:     po.TotalAmount,
		Score:           c.Score,
		Status:          c.Status.String(),
		Scores:          c.Comparison.Scores,
		Discrepancies:   discrepancies,
	}, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
