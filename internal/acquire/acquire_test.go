package acquire

import (
	"context"
	"errors"
	"image/color"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"quickbills/constants"
	"quickbills/internal/common"
)

func TestAcquire(t *testing.T) {
	// Disable logging during tests
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	RegisterFailHandler(Fail)
	RunSpecs(t, "Acquire Suite")
}

// stubRunner replaces the external tesseract process.
type stubRunner struct {
	stdout []byte
	stderr []byte
	err    error

	gotName string
	gotArgs []string
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.gotName = name
	s.gotArgs = args
	return s.stdout, s.stderr, s.err
}

func writeTestPNG(dir string) string {
	img := imaging.New(40, 40, color.White)
	path := filepath.Join(dir, "receipt.png")
	Expect(imaging.Save(img, path)).To(Succeed())
	return path
}

var _ = Describe("Extractor.Extract", func() {
	var (
		extractor *Extractor
		runner    *stubRunner
		tmpDir    string
		path      string
		raw       RawText
		err       error
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		runner = &stubRunner{stdout: []byte("STAPLES\nCopy Paper 25.00\nTOTAL 25.00\n")}
		extractor = NewExtractor(Config{}, nil)
		extractor.runner = runner
	})

	JustBeforeEach(func() {
		raw, err = extractor.Extract(context.Background(), path)
	})

	When("processing an image", func() {
		BeforeEach(func() {
			path = writeTestPNG(tmpDir)
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should return the recognized text", func() {
			Expect(raw.Text).To(ContainSubstring("Copy Paper 25.00"))
		})

		It("should mark the source and method", func() {
			Expect(raw.SourceType).To(Equal(constants.IMAGE))
			Expect(raw.Method).To(Equal("image-ocr"))
			Expect(raw.Pages).To(Equal(1))
		})

		It("should invoke tesseract with stdout output and the language", func() {
			Expect(runner.gotName).To(Equal("tesseract"))
			Expect(runner.gotArgs).To(HaveLen(4))
			Expect(runner.gotArgs[1]).To(Equal("stdout"))
			Expect(runner.gotArgs[2:4]).To(Equal([]string{"-l", "eng"}))
		})

		It("should hand tesseract a preprocessed copy, not the original", func() {
			Expect(runner.gotArgs[0]).NotTo(Equal(path))
		})
	})

	When("recognition produces no text", func() {
		BeforeEach(func() {
			path = writeTestPNG(tmpDir)
			runner.stdout = []byte("   \n\n  ")
		})

		It("should fail with an empty-content error", func() {
			Expect(err).To(HaveOccurred())
			Expect(common.IsEmptyContent(err)).To(BeTrue())
		})
	})

	When("tesseract itself fails", func() {
		BeforeEach(func() {
			path = writeTestPNG(tmpDir)
			runner.err = errors.New("exit status 1")
			runner.stderr = []byte("Error opening data file")
		})

		It("should fail with an acquisition error, not empty content", func() {
			Expect(common.IsAcquisitionError(err)).To(BeTrue())
			Expect(common.IsEmptyContent(err)).To(BeFalse())
		})
	})

	When("the image cannot be decoded", func() {
		BeforeEach(func() {
			path = filepath.Join(tmpDir, "broken.png")
			Expect(os.WriteFile(path, []byte("not an image"), 0o644)).To(Succeed())
		})

		It("should fail with an acquisition error", func() {
			Expect(common.IsAcquisitionError(err)).To(BeTrue())
		})
	})

	When("the extension is unsupported", func() {
		BeforeEach(func() {
			path = filepath.Join(tmpDir, "notes.txt")
			Expect(os.WriteFile(path, []byte("hello"), 0o644)).To(Succeed())
		})

		It("should refuse the file", func() {
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("unsupported extension"))
		})
	})

	When("the PDF cannot be opened", func() {
		BeforeEach(func() {
			path = filepath.Join(tmpDir, "broken.pdf")
			Expect(os.WriteFile(path, []byte("not a pdf"), 0o644)).To(Succeed())
		})

		It("should fail with an acquisition error", func() {
			Expect(common.IsAcquisitionError(err)).To(BeTrue())
		})
	})
})

var _ = Describe("Normalize", func() {
	It("should convert CRLF to LF", func() {
		Expect(Normalize("a\r\nb")).To(Equal("a\nb"))
	})

	It("should collapse tabs and runs of spaces", func() {
		Expect(Normalize("a\t\tb    c")).To(Equal("a b c"))
	})

	It("should collapse runs of blank lines to one", func() {
		Expect(Normalize("a\n\n\n\n\nb")).To(Equal("a\n\nb"))
	})

	It("should trim trailing spaces per line and surrounding whitespace", func() {
		Expect(Normalize("  a   \nb  \n")).To(Equal("a\nb"))
	})

	It("should drop ruled separator lines", func() {
		Expect(reBoxNoise.ReplaceAllString("a\n------\nb", "")).To(Equal("a\n\nb"))
	})
})

var _ = Describe("heuristicConfidence", func() {
	It("should stay within (0, 1]", func() {
		Expect(heuristicConfidence("")).To(BeNumerically(">", 0))
		Expect(heuristicConfidence("x")).To(BeNumerically("<=", 1))
	})

	It("should score receipt-like text above bare noise", func() {
		receipt := "STAPLES STORE #142\nCopy Paper $ 25.00\nStapler 8.99\nTOTAL USD 33.99\nThank you for shopping with us today"
		Expect(heuristicConfidence(receipt)).To(BeNumerically(">", heuristicConfidence("zzzz")))
	})
})

var _ = Describe("preprocess", func() {
	var extractor *Extractor

	BeforeEach(func() {
		extractor = NewExtractor(Config{UpscaleThresholdPx: 100, UpscaleFactor: 2.0}, nil)
	})

	It("should upscale images below the threshold", func() {
		small := imaging.New(40, 60, color.White)
		out := extractor.preprocess(small)
		Expect(out.Bounds().Dx()).To(Equal(80))
	})

	It("should leave large images at their size", func() {
		large := imaging.New(200, 300, color.White)
		out := extractor.preprocess(large)
		Expect(out.Bounds().Dx()).To(Equal(200))
		Expect(out.Bounds().Dy()).To(Equal(300))
	})
})
