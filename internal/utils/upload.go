package utils

import (
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// MaxProofFileSize caps payment proof uploads at 5MB.
const MaxProofFileSize = 5 << 20

var (
	ErrFileTooLarge    = errors.New("file exceeds the 5MB limit")
	ErrFileTypeInvalid = errors.New("file type not allowed")
	ErrOrderIDUnsafe   = errors.New("order id contains characters not allowed in a filename")
)

// The order id ends up in the stored filename, so it is held to the
// same charset the ledger issues (uuid-like). No dots, no separators.
var proofOrderIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Images plus PDF. Keyed by lowercase extension.
var allowedProofExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".pdf":  true,
}

// ValidateProofFile enforces the size and type allow-list server-side.
func ValidateProofFile(fh *multipart.FileHeader) error {
	if fh.Size > MaxProofFileSize {
		return ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedProofExtensions[ext] {
		return ErrFileTypeInvalid
	}

	return nil
}

// SaveProofFile stores an uploaded proof under
// <uploadDir>/payment-proofs/<order>-<uuid><ext> and returns the stored
// path relative to uploadDir.
func SaveProofFile(fh *multipart.FileHeader, uploadDir, orderID string) (string, error) {
	if err := ValidateProofFile(fh); err != nil {
		return "", err
	}
	if !proofOrderIDPattern.MatchString(orderID) {
		return "", ErrOrderIDUnsafe
	}

	dir := filepath.Join(uploadDir, "payment-proofs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	name := fmt.Sprintf("%s-%s%s", orderID, uuid.New().String()[:8], ext)
	dst := filepath.Join(dir, name)

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	if _, err := out.ReadFrom(src); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return filepath.Join("payment-proofs", name), nil
}
