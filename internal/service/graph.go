package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zjregee/scout/internal/models"
)

// GraphMermaid describes the control loop as a Mermaid flowchart.
func GraphMermaid() string {
	var b strings.Builder

	b.WriteString("flowchart TD\n")
	fmt.Fprintf(&b, "    start([start]) --> %s\n", models.StepReason)
	fmt.Fprintf(&b, "    %s -- tool calls --> %s\n", models.StepReason, models.StepAct)
	fmt.Fprintf(&b, "    %s -- final answer --> %s([%s])\n", models.StepReason, models.StepDone, models.StepDone)
	fmt.Fprintf(&b, "    %s --> %s\n", models.StepAct, models.StepReason)

	return b.String()
}

func WriteGraph(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("graph path is required")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create graph directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(GraphMermaid()), 0644); err != nil {
		return fmt.Errorf("failed to write graph: %w", err)
	}
	return nil
}
