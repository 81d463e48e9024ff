// -----------------------------------------------------------------------
// PDF Extractor Interface - Extract text content from PDF documents
// -----------------------------------------------------------------------

package interfaces

import (
	"context"
)

// PDFExtractor extracts plain text from PDF documents. The resume intake
// reads from disk; the mailbox intake hands over attachment bytes.
type PDFExtractor interface {
	// ExtractTextFromFile reads a PDF from disk and returns its text content.
	ExtractTextFromFile(ctx context.Context, path string) (string, error)

	// ExtractTextFromBytes extracts text from in-memory PDF content.
	ExtractTextFromBytes(ctx context.Context, content []byte) (string, error)
}
