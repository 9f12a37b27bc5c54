// Package pdf reads the first page of conference-paper PDFs and opens them
// in a viewer for manual review.
package pdf

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Opener handles resolving and opening paper PDFs.
type Opener struct {
	pdfDir    string
	pdfReader string
}

// NewOpener creates a new PDF opener for the archive directory pdfDir.
func NewOpener(pdfDir, pdfReader string) *Opener {
	if pdfReader == "" {
		pdfReader = "system"
	}
	return &Opener{
		pdfDir:    pdfDir,
		pdfReader: pdfReader,
	}
}

// ResolvePath returns the path of <paperID>.pdf, checking that it exists.
func (o *Opener) ResolvePath(paperID string) (string, error) {
	if o.pdfDir == "" {
		return "", fmt.Errorf("pdf_dir not configured")
	}
	if paperID == "" {
		return "", fmt.Errorf("no paper id specified")
	}

	fullPath := filepath.Join(o.pdfDir, paperID+".pdf")

	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("PDF not found: %s", fullPath)
		}
		return "", fmt.Errorf("checking PDF: %w", err)
	}

	return fullPath, nil
}

// Open opens a PDF file using the configured reader.
func (o *Opener) Open(fullPath string) error {
	cmd, err := o.Command(fullPath)
	if err != nil {
		return err
	}
	return cmd.Start()
}

// Command returns the viewer command for fullPath on this platform.
func (o *Opener) Command(fullPath string) (*exec.Cmd, error) {
	switch runtime.GOOS {
	case "darwin":
		return o.darwinCommand(fullPath), nil
	case "linux":
		return o.linuxCommand(fullPath), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// darwinCommand returns the command to open a PDF on macOS.
func (o *Opener) darwinCommand(path string) *exec.Cmd {
	switch o.pdfReader {
	case "skim":
		return exec.Command("open", "-a", "Skim", path)
	case "preview":
		return exec.Command("open", "-a", "Preview", path)
	default: // "system"
		return exec.Command("open", path)
	}
}

// linuxCommand returns the command to open a PDF on Linux.
func (o *Opener) linuxCommand(path string) *exec.Cmd {
	switch o.pdfReader {
	case "zathura":
		return exec.Command("zathura", path)
	case "evince":
		return exec.Command("evince", path)
	case "okular":
		return exec.Command("okular", path)
	default: // "system"
		return exec.Command("xdg-open", path)
	}
}
