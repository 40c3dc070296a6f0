package decoder

import (
	"context"
	"strconv"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/stegscan/internal/model"
	"github.com/nao1215/stegscan/internal/toolchain"
)

// toolSuccessConfidence is the minimum confidence of a tool-reported extraction.
const toolSuccessConfidence = 0.8

// DefaultPasswords are tried when the caller supplies none.
var DefaultPasswords = []string{"", "password", "123456", "admin", "stego", "secret", "hidden"}

// PayloadExtractor runs a password-based extraction tool.
// *toolchain.Runner implements it.
type PayloadExtractor interface {
	ExtractPayload(ctx context.Context, path string, tool toolchain.Tool, password string) toolchain.Outcome
}

// ToolMethod names the attempt for a tool, e.g. "Steghide".
// A Caser is stateful, so each call builds its own.
func ToolMethod(tool toolchain.Tool) string {
	return cases.Title(language.English).String(string(tool))
}

// TryTool runs tool over passwords in order. The first failure is
// recorded, and a success is recorded and ends the loop. A missing tool
// is recorded once and ends the loop since no password can change that.
func (d *Decoder) TryTool(ctx context.Context, path string, tool toolchain.Tool, passwords []string) []model.DecoderAttempt {
	attempts := make([]model.DecoderAttempt, 0, 2)
	method := ToolMethod(tool)

	for i, password := range passwords {
		if ctx.Err() != nil {
			break
		}
		d.logger.Debug("trying passphrase", "tool", tool, "password", password)

		out := d.payloads.ExtractPayload(ctx, path, tool, password)
		if out.OK() {
			info := map[string]string{
				"passphrase_used": strconv.FormatBool(password != ""),
				"tool":            string(tool),
			}
			if password != "" {
				info["passphrase"] = password
			}
			attempts = append(attempts, model.DecoderAttempt{
				Method:     method,
				Success:    true,
				Confidence: max(toolSuccessConfidence, AssessDataValidity(out.Output)),
				Data:       out.Output,
				Info:       info,
			})
			d.logger.Info("payload extracted", "tool", tool, "size", len(out.Output))
			break
		}

		if i == 0 || out.Status == toolchain.StatusUnavailable {
			attempt := model.NewFailedAttempt(method, 0, out.Reason)
			attempt.Info["status"] = out.Status.String()
			attempt.Info["passphrase_used"] = strconv.FormatBool(password != "")
			attempts = append(attempts, attempt)
		}
		if out.Status == toolchain.StatusUnavailable {
			d.logger.Debug("tool unavailable, skipping remaining passwords", "tool", tool)
			break
		}
	}

	return attempts
}
