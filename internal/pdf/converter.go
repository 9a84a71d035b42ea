package pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	"github.com/gen2brain/go-fitz" // Lightweight PDF renderer
)

const (
	// maxResumePages caps how many pages get rendered. Résumés run one to
	// three pages; anything past the cap is portfolio padding that only
	// inflates the vision payload.
	maxResumePages = 8

	// pageQuality trades JPEG size against legibility. Text survives 85
	// fine and the pages ship to a vision model over the network.
	pageQuality = 85
)

// RenderResumePDF renders résumé pages to JPEG for vision extraction,
// capped at maxResumePages.
func RenderResumePDF(pdfData []byte) ([][]byte, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	pageCount := doc.NumPage()
	if pageCount > maxResumePages {
		pageCount = maxResumePages
	}
	pages := make([][]byte, 0, pageCount)

	for i := 0; i < pageCount; i++ {
		img, err := doc.Image(i)
		if err != nil {
			return nil, fmt.Errorf("failed to render page %d: %w", i, err)
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: pageQuality}); err != nil {
			return nil, fmt.Errorf("failed to encode page %d: %w", i, err)
		}

		pages = append(pages, buf.Bytes())
	}

	return pages, nil
}

// NormalizeResumeImage turns an uploaded résumé photo or scan into the JPEG
// the extractor expects. JPEG input passes through untouched; re-encoding it
// would only stack compression artifacts onto the text.
func NormalizeResumeImage(data []byte) ([]byte, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if format == "jpeg" {
		return data, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: pageQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return buf.Bytes(), nil
}
