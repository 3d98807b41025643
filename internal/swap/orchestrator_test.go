package swap

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pchoi/fitswap/internal/gemini"
	"github.com/pchoi/fitswap/internal/imaging"
	"github.com/pchoi/fitswap/internal/vision"
)

type generateReply struct {
	result *gemini.GenerateResult
	err    error
}

// fakeInvoker records every call and replays canned generation replies in
// order.
type fakeInvoker struct {
	analyzeText string
	replies     []generateReply

	analyzeCalls int
	generateReqs []gemini.GenerateRequest
}

func (f *fakeInvoker) AnalyzeImage(_ context.Context, _ gemini.AnalyzeRequest) (string, error) {
	f.analyzeCalls++
	return f.analyzeText, nil
}

func (f *fakeInvoker) GenerateImage(_ context.Context, req gemini.GenerateRequest) (*gemini.GenerateResult, error) {
	f.generateReqs = append(f.generateReqs, req)
	if len(f.replies) == 0 {
		return nil, errors.New("no canned reply")
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply.result, reply.err
}

const (
	primaryModel  = "image-model-primary"
	fallbackModel = "image-model-fallback"
)

func newTestOrchestrator(invoker *fakeInvoker) *Orchestrator {
	analyzer := vision.NewAnalyzer(invoker, "analysis-model")
	return NewOrchestrator(analyzer, invoker, primaryModel, fallbackModel)
}

func asset(b byte) *imaging.Asset {
	return &imaging.Asset{Data: []byte{b}, MIMEType: "image/jpeg"}
}

func validRequest(productCount int) Request {
	req := Request{Person: asset(1), Instruction: "keep it casual"}
	for i := 0; i < productCount; i++ {
		req.Products = append(req.Products, asset(byte(10+i)))
	}
	return req
}

func imageReply() generateReply {
	return generateReply{result: &gemini.GenerateResult{ImageData: []byte("png-bytes"), MIMEType: "image/png"}}
}

func TestRunRejectsInvalidRequests(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{name: "missing person", req: Request{Products: []*imaging.Asset{asset(1)}}},
		{name: "no products", req: Request{Person: asset(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invoker := &fakeInvoker{}
			_, err := newTestOrchestrator(invoker).Run(t.Context(), tt.req)
			if !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("err = %v, want ErrInvalidRequest", err)
			}
			if invoker.analyzeCalls != 0 || len(invoker.generateReqs) != 0 {
				t.Errorf("invalid request reached the model: %d analyze, %d generate calls",
					invoker.analyzeCalls, len(invoker.generateReqs))
			}
		})
	}
}

func TestRunHappyPath(t *testing.T) {
	invoker := &fakeInvoker{
		analyzeText: `PERSON_DESCRIPTION: desc PERSON_JSON: {"garment_to_replace": {"type": "shirt"}}`,
		replies:     []generateReply{imageReply()},
	}
	result, err := newTestOrchestrator(invoker).Run(t.Context(), validRequest(2))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if invoker.analyzeCalls != 3 {
		t.Errorf("analyze calls = %d, want 3 (person + 2 products)", invoker.analyzeCalls)
	}
	if len(invoker.generateReqs) != 1 {
		t.Fatalf("generate calls = %d, want 1", len(invoker.generateReqs))
	}

	genReq := invoker.generateReqs[0]
	if genReq.Model != primaryModel {
		t.Errorf("model = %q, want %q", genReq.Model, primaryModel)
	}
	if len(genReq.Images) != 3 {
		t.Errorf("generation images = %d, want 3 (person first, then products)", len(genReq.Images))
	}
	if genReq.Images[0].Data[0] != 1 {
		t.Error("person image is not the first generation input")
	}
	if !strings.Contains(genReq.Prompt, "PRODUCT IMAGE 2:") {
		t.Error("directive missing second product section")
	}

	if string(result.Image.Data) != "png-bytes" {
		t.Errorf("result image = %q, want png-bytes", result.Image.Data)
	}
	if result.UsedFallback {
		t.Error("result reports fallback on a successful primary call")
	}
	if result.Model != primaryModel {
		t.Errorf("result model = %q, want %q", result.Model, primaryModel)
	}
	if len(result.Products) != 2 {
		t.Errorf("result products = %d, want 2", len(result.Products))
	}
}

func TestRunFallsBackOnTransportFailure(t *testing.T) {
	invoker := &fakeInvoker{
		replies: []generateReply{
			{err: errors.New("503 service unavailable")},
			imageReply(),
		},
	}
	result, err := newTestOrchestrator(invoker).Run(t.Context(), validRequest(1))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(invoker.generateReqs) != 2 {
		t.Fatalf("generate calls = %d, want 2", len(invoker.generateReqs))
	}
	if invoker.generateReqs[0].Model == invoker.generateReqs[1].Model {
		t.Error("fallback attempt reused the primary model identifier")
	}
	if invoker.generateReqs[1].Model != fallbackModel {
		t.Errorf("fallback model = %q, want %q", invoker.generateReqs[1].Model, fallbackModel)
	}
	if !result.UsedFallback {
		t.Error("result does not report fallback use")
	}
	if result.Model != fallbackModel {
		t.Errorf("result model = %q, want %q", result.Model, fallbackModel)
	}
}

func TestRunBothAttemptsFail(t *testing.T) {
	invoker := &fakeInvoker{
		replies: []generateReply{
			{err: errors.New("primary timed out")},
			{err: errors.New("fallback refused")},
		},
	}
	_, err := newTestOrchestrator(invoker).Run(t.Context(), validRequest(1))

	var unavailable *UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("err = %v, want *UnavailableError", err)
	}
	msg := unavailable.Error()
	if !strings.Contains(msg, "primary timed out") || !strings.Contains(msg, "fallback refused") {
		t.Errorf("error message %q missing one of the underlying failures", msg)
	}
	if len(invoker.generateReqs) != 2 {
		t.Errorf("generate calls = %d, want exactly 2", len(invoker.generateReqs))
	}
}

func TestRunTextOnlyResponseIsFinal(t *testing.T) {
	invoker := &fakeInvoker{
		replies: []generateReply{
			{result: &gemini.GenerateResult{Text: "I cannot edit this image."}},
		},
	}
	_, err := newTestOrchestrator(invoker).Run(t.Context(), validRequest(1))

	if !errors.Is(err, ErrNoImageProduced) {
		t.Errorf("err = %v, want ErrNoImageProduced", err)
	}
	if len(invoker.generateReqs) != 1 {
		t.Errorf("generate calls = %d, want 1 (no fallback for an image-less success)", len(invoker.generateReqs))
	}
}

func TestRunDegradedAnalysisStillSwaps(t *testing.T) {
	invoker := &fakeInvoker{
		analyzeText: "no structured output at all",
		replies:     []generateReply{imageReply()},
	}
	result, err := newTestOrchestrator(invoker).Run(t.Context(), validRequest(1))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !result.Person.Degraded {
		t.Error("person record not marked degraded")
	}
	if !strings.Contains(result.Directive, `"type": "unknown"`) {
		t.Error("directive missing fallback attribute tree")
	}
}
