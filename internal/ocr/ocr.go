package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fastjson"
)

const (
	ImagePlaceholder = "{image}"
	DefaultTimeout   = time.Minute

	// maxErrorOutput bounds how much stderr ends up in an error message.
	maxErrorOutput = 512
)

// Kind classifies why a poster could not be read.
type Kind string

const (
	KindTimeout Kind = "timeout"
	KindProcess Kind = "process"
	KindScript  Kind = "script"
	KindOutput  Kind = "output"
)

// Error reports an OCR failure. A poster that was read but contained no
// recognizable offers is not an error.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("ocr %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

type ExtractedProduct struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image,omitempty"`
	Offer       string  `json:"offer,omitempty"`
	InStock     bool    `json:"inStock"`
}

type Result struct {
	Products     []ExtractedProduct `json:"products"`
	StoreAddress string             `json:"storeAddress,omitempty"`
}

// Runner extracts offers from poster images by running an external OCR
// command and parsing what it prints.
type Runner struct {
	log     zerolog.Logger
	command []string
	timeout time.Duration
	parsers fastjson.ParserPool
}

// NewRunner returns a Runner for command. Every ImagePlaceholder argument
// is replaced by the image path; without one the path is appended.
func NewRunner(logger zerolog.Logger, command []string, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Runner{
		log:     logger.With().Str("component", "ocr").Logger(),
		command: command,
		timeout: timeout,
	}
}

func (r *Runner) args(imagePath string) []string {
	args := make([]string, 0, len(r.command)+1)
	replaced := false
	for _, a := range r.command {
		if strings.Contains(a, ImagePlaceholder) {
			a = strings.ReplaceAll(a, ImagePlaceholder, imagePath)
			replaced = true
		}
		args = append(args, a)
	}
	if !replaced {
		args = append(args, imagePath)
	}

	return args
}

// Process runs OCR on the image at imagePath.
func (r *Runner) Process(ctx context.Context, imagePath string) (Result, error) {
	if len(r.command) == 0 {
		return Result{}, &Error{Kind: KindProcess, Err: errors.New("no command configured")}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	args := r.args(imagePath)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	logger := r.log.With().Str("image", imagePath).Dur("elapsed", time.Since(start)).Logger()

	if ctx.Err() == context.DeadlineExceeded {
		logger.Warn().Msg("ocr timed out")
		return Result{}, &Error{Kind: KindTimeout, Err: fmt.Errorf("no result after %s", r.timeout)}
	}

	if err != nil {
		// Scripts report their own failures as {"error": "..."} on stdout.
		if _, perr := r.parse(stdout.Bytes()); perr != nil {
			var oerr *Error
			if errors.As(perr, &oerr) && oerr.Kind == KindScript {
				logger.Warn().Err(perr).Msg("ocr script failed")
				return Result{}, perr
			}
		}

		logger.Warn().Err(err).Str("stderr", truncate(stderr.String())).Msg("ocr command failed")
		return Result{}, &Error{Kind: KindProcess, Err: fmt.Errorf("%w: %s", err, truncate(stderr.String()))}
	}

	res, err := r.parse(stdout.Bytes())
	if err != nil {
		return Result{}, err
	}
	logger.Debug().Int("products", len(res.Products)).Msg("poster processed")

	return res, nil
}

func (r *Runner) parse(out []byte) (Result, error) {
	p := r.parsers.Get()
	defer r.parsers.Put(p)

	return parse(p, out)
}

// Parse interprets OCR output. JSON objects are read as structured script
// output; anything else is scanned line by line for prices.
func Parse(out []byte) (Result, error) {
	var p fastjson.Parser
	return parse(&p, out)
}

func parse(p *fastjson.Parser, out []byte) (Result, error) {
	trimmed := bytes.TrimSpace(out)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		v, err := p.ParseBytes(trimmed)
		if err == nil && v.Type() == fastjson.TypeObject {
			return parseScript(v)
		}
	}

	return Result{Products: ParseText(string(out))}, nil
}

func parseScript(v *fastjson.Value) (Result, error) {
	if v.Exists("error") {
		msg := string(v.GetStringBytes("error"))
		if msg == "" {
			msg = "unknown error"
		}
		return Result{}, &Error{Kind: KindScript, Err: errors.New(msg)}
	}

	res := Result{
		Products:     []ExtractedProduct{},
		StoreAddress: string(v.GetStringBytes("storeInfo", "address")),
	}

	if !v.Exists("products") {
		return res, nil
	}

	items, err := v.Get("products").Array()
	if err != nil {
		return Result{}, &Error{Kind: KindOutput, Err: fmt.Errorf("products must be an array: %w", err)}
	}

	for i, item := range items {
		if item.Type() != fastjson.TypeObject {
			return Result{}, &Error{Kind: KindOutput, Err: fmt.Errorf("product %d must be an object", i)}
		}

		prod := ExtractedProduct{
			Name:        strings.TrimSpace(string(item.GetStringBytes("name"))),
			Price:       item.GetFloat64("price"),
			Description: string(item.GetStringBytes("description")),
			Category:    string(item.GetStringBytes("category")),
			Image:       string(item.GetStringBytes("image")),
			Offer:       string(item.GetStringBytes("offer")),
			InStock:     true,
		}
		if item.Exists("inStock") {
			prod.InStock = item.GetBool("inStock")
		}
		if prod.Category == "" {
			prod.Category = DefaultCategory
		}
		if prod.Name == "" || prod.Price <= 0 {
			continue
		}

		res.Products = append(res.Products, prod)
	}

	return res, nil
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxErrorOutput {
		return s[:maxErrorOutput] + "..."
	}
	return s
}
