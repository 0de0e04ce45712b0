// Package converter orchestrates a two-pass conversion: pass 1 populates
// the known-path set, pass 2 rewrites and
// emits every record. Processing is deliberately sequential, not pooled
// across goroutines: the JS-module classifier depends on observing
// records in arrival order, so a cooperative ctx.Err() check on each
// loop iteration is the only concurrency concern here.
package converter

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/openzim/warc2zim/internal/dynhelper"
	"github.com/openzim/warc2zim/internal/record"
	"github.com/openzim/warc2zim/internal/rewrite"
	"github.com/openzim/warc2zim/internal/urlcanon"
	"github.com/openzim/warc2zim/internal/zimpath"
)

// Summary reports how many records landed in each outcome bucket.
type Summary struct {
	Written int
	Aliased int
	Skipped int
}

// Options carries the ambient, record-independent knobs a conversion run
// needs beyond the record stream itself.
type Options struct {
	// BundlePrefix roots the Dynamic Rewriter Helper's absolute links.
	BundlePrefix string
	// CustomCSSHref, when non-empty, is inserted as a <link> at the end
	// of every rewritten document's <head>. Fetching its
	// content is the external collaborator's job; this core
	// only wires the href through.
	CustomCSSHref string
}

// writableStatus holds the status codes that become bundle entries.
var writableStatus = map[int]bool{200: true, 201: true, 202: true, 203: true}

// aliasableStatus holds the redirect status codes that become aliases
// when their target is known.
var aliasableStatus = map[int]bool{301: true, 302: true, 306: true, 307: true}

// Convert runs both passes over stream, writing into sink. canon is
// shared by both passes so the known-path set populated in pass 1 is
// exactly what pass 2 consults. logger receives a structured warning for
// every recoverable error; a nil logger falls back to
// slog.Default().
func Convert(ctx context.Context, stream record.Stream, sink record.EntrySink, canon *urlcanon.Canonicalizer, bundlePrefix string, logger *slog.Logger) (Summary, error) {
	return ConvertWithOptions(ctx, stream, sink, canon, Options{BundlePrefix: bundlePrefix}, logger)
}

// ConvertWithOptions is Convert with the full Options record; Convert is
// the common-case shorthand kept for callers that don't need a custom
// CSS link.
func ConvertWithOptions(ctx context.Context, stream record.Stream, sink record.EntrySink, canon *urlcanon.Canonicalizer, opts Options, logger *slog.Logger) (Summary, error) {
	if logger == nil {
		logger = slog.Default()
	}

	known := zimpath.NewSet()
	if err := pass1(ctx, stream, canon, known, logger); err != nil {
		return Summary{}, err
	}
	if err := stream.Reset(); err != nil {
		return Summary{}, fmt.Errorf("converter: resetting stream for pass 2: %w", err)
	}

	if err := emitHelperAssets(sink, logger); err != nil {
		return Summary{}, err
	}

	pipeline := rewrite.New(canon, known)
	rw := rewrite.NewRewriter(pipeline)
	return pass2(ctx, stream, sink, canon, pipeline, rw, opts, logger)
}

// emitHelperAssets writes the Dynamic Rewriter Helper's static JS assets
// once, under the reserved static prefix.
func emitHelperAssets(sink record.EntrySink, logger *slog.Logger) error {
	for _, name := range dynhelper.AssetNames {
		data, err := dynhelper.Asset(name)
		if err != nil {
			return fmt.Errorf("converter: reading helper asset %q: %w", name, err)
		}
		path := string(dynhelper.ReservedPath(name))
		if _, err := sink.Write(path, data, "text/javascript"); err != nil {
			return fmt.Errorf("converter: writing helper asset %q: %w", path, err)
		}
		logger.Debug("emitted dynamic rewriter helper asset", "path", path)
	}
	return nil
}

// pass1 populates the canonical-path set by canonicalizing every
// record's target URI.
func pass1(ctx context.Context, stream record.Stream, canon *urlcanon.Canonicalizer, known *zimpath.Set, logger *slog.Logger) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := stream.Next(ctx)
		if err == record.ErrEndOfStream {
			return nil
		}
		if err != nil {
			return fmt.Errorf("converter: pass 1 read: %w", err)
		}
		if rec.TargetURI == "" {
			continue
		}
		path, err := canon.Canonicalize(rec.TargetURI)
		if err != nil {
			logger.Warn("pass 1: skipping uncanonicalizable record", "url", rec.TargetURI, "err", err)
			continue
		}
		known.Add(path)
	}
}

// pass2 applies the status-code policy and rewrites/emits each record.
func pass2(ctx context.Context, stream record.Stream, sink record.EntrySink, canon *urlcanon.Canonicalizer, pipeline *rewrite.Pipeline, rw *rewrite.Rewriter, opts Options, logger *slog.Logger) (Summary, error) {
	var summary Summary

	for {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		rec, err := stream.Next(ctx)
		if err == record.ErrEndOfStream {
			return summary, nil
		}
		if err != nil {
			return summary, fmt.Errorf("converter: pass 2 read: %w", err)
		}
		if rec.TargetURI == "" {
			summary.Skipped++
			continue
		}

		path, err := canon.Canonicalize(rec.TargetURI)
		if err != nil {
			logger.Warn("pass 2: skipping uncanonicalizable record", "url", rec.TargetURI, "err", err)
			summary.Skipped++
			continue
		}
		if path.IsReserved() {
			logger.Error("pass 2: record collides with reserved static prefix", "url", rec.TargetURI, "path", path)
			summary.Skipped++
			continue
		}

		switch {
		case writableStatus[rec.StatusCode]:
			if err := emit(rec, path, rw, opts, sink, &summary, logger); err != nil {
				return summary, err
			}
		case aliasableStatus[rec.StatusCode]:
			emitAlias(rec, path, canon, pipeline, sink, &summary, logger)
		default:
			summary.Skipped++
		}
	}
}

func emit(rec record.Record, path zimpath.Path, rw *rewrite.Rewriter, opts Options, sink record.EntrySink, summary *Summary, logger *slog.Logger) error {
	body, err := rec.Payload()
	if err != nil {
		return fmt.Errorf("converter: reading payload for %q: %w", rec.TargetURI, err)
	}
	if len(body) == 0 {
		summary.Skipped++
		return nil
	}

	decoded, err := record.DecodePayload(rec.ContentEncoding, body)
	if err != nil {
		logger.Warn("pass 2: passthrough on decode failure", "url", rec.TargetURI, "err", err)
		decoded = body
	}

	class := rewrite.InferMediaClass(rec.ResourceType, rec.ContentType)
	if class == rewrite.MediaHTML || class == rewrite.MediaCSS || class == rewrite.MediaJSClassic || class == rewrite.MediaJSModule {
		if textBody, err := record.SniffText(decoded, rec.ContentType); err == nil {
			decoded = textBody
		}
	}
	if class == rewrite.MediaJSClassic && rw.Modules().IsModule(string(path)) {
		class = rewrite.MediaJSModule
	}

	doc := rewrite.DocumentContext{
		OriginalURL:   rec.TargetURI,
		CanonicalPath: path,
		BundlePrefix:  opts.BundlePrefix,
	}
	inject := rewrite.HeadInjection{CustomCSSHref: opts.CustomCSSHref}
	if class == rewrite.MediaHTML {
		if snippet, err := helperPreHeadSnippet(rec.TargetURI, opts.BundlePrefix); err != nil {
			logger.Warn("pass 2: could not build helper bootstrap snippet", "url", rec.TargetURI, "err", err)
		} else {
			inject.PreHeadSnippet = snippet
			inject.RuntimeScriptSrcs = dynhelper.RuntimeScriptSrcs(path)
		}
	}

	rewritten, err := rw.Rewrite(class, decoded, doc, inject)
	if err != nil {
		logger.Warn("pass 2: passthrough on rewrite failure", "url", rec.TargetURI, "err", err)
		rewritten = decoded
	}

	wrote, err := sink.Write(string(path), rewritten, rec.ContentType)
	if err != nil {
		return fmt.Errorf("converter: writing %q: %w", path, err)
	}
	if wrote {
		summary.Written++
	} else {
		summary.Skipped++
	}
	return nil
}

// helperPreHeadSnippet builds the Dynamic Rewriter Helper's bootstrap
// config for one document.
func helperPreHeadSnippet(originalURL, bundlePrefix string) (string, error) {
	u, err := url.Parse(originalURL)
	if err != nil {
		return "", fmt.Errorf("converter: parsing document url %q: %w", originalURL, err)
	}
	cfg := dynhelper.BuildConfig(originalURL, u.Hostname(), u.Scheme, bundlePrefix)
	return cfg.PreHeadSnippet()
}

// emitAlias drops a redirect whose target is outside the known-path set,
// or whose target canonicalizes to the record's own path (as happens for
// a same-URL http->https redirect), rather than aliasing it.
func emitAlias(rec record.Record, path zimpath.Path, canon *urlcanon.Canonicalizer, pipeline *rewrite.Pipeline, sink record.EntrySink, summary *Summary, logger *slog.Logger) {
	target, ok := rec.AliasTarget()
	if !ok {
		summary.Skipped++
		return
	}
	targetPath, err := canon.Canonicalize(target)
	if err != nil {
		logger.Warn("pass 2: alias target uncanonicalizable", "url", rec.TargetURI, "target", target, "err", err)
		summary.Skipped++
		return
	}
	if targetPath == path {
		summary.Skipped++
		return
	}
	if !pipeline.IsKnown(targetPath) {
		summary.Skipped++
		return
	}

	wrote, err := sink.Alias(string(path), string(targetPath))
	if err != nil {
		logger.Warn("pass 2: alias write failed", "url", rec.TargetURI, "err", err)
		summary.Skipped++
		return
	}
	if wrote {
		summary.Aliased++
	} else {
		summary.Skipped++
	}
}
