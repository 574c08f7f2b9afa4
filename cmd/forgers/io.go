package main

// Stream plumbing for the forgers subcommands: transparent gzip on input
// (detected from the leading magic bytes, so renamed files and pipes work),
// gzip or bgzf on output by extension or on request.

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/hts/bgzf"
	"github.com/klauspost/compress/gzip"
)

// closeAll folds a stack of closers into one, closing in reverse order and
// keeping the first error.
func closeAll(closers []func() error) func() error {
	return func() error {
		var err error
		for i := len(closers) - 1; i >= 0; i-- {
			if e := closers[i](); e != nil && err == nil {
				err = e
			}
		}
		return err
	}
}

// isGzipped peeks at the first two bytes for the gzip magic.
func isGzipped(br *bufio.Reader) bool {
	magic, err := br.Peek(2)
	return err == nil && magic[0] == 0x1f && magic[1] == 0x8b
}

// openInput opens a possibly-gzipped stream; "-" reads stdin.
func openInput(ctx context.Context, path string) (io.Reader, func() error, error) {
	var (
		raw     io.Reader
		closers []func() error
	)
	if path == "-" {
		raw = os.Stdin
	} else {
		in, err := file.Open(ctx, path)
		if err != nil {
			return nil, nil, errors.E(err, "open input:", path)
		}
		closers = append(closers, func() error { return in.Close(ctx) })
		raw = in.Reader(ctx)
	}
	br := bufio.NewReaderSize(raw, 64<<10)
	if !isGzipped(br) {
		return br, closeAll(closers), nil
	}
	gz, err := gzip.NewReader(br)
	if err != nil {
		_ = closeAll(closers)()
		return nil, nil, errors.E(err, "decompress input:", path)
	}
	closers = append(closers, gz.Close)
	return gz, closeAll(closers), nil
}

// createOutput opens the output stream; "-" writes stdout. A ".bgz"
// extension selects bgzf compression, ".gz" or force plain gzip.
func createOutput(ctx context.Context, path string, force bool) (io.Writer, func() error, error) {
	var (
		w       io.Writer
		closers []func() error
	)
	if path == "-" {
		w = os.Stdout
	} else {
		out, err := file.Create(ctx, path)
		if err != nil {
			return nil, nil, errors.E(err, "create output:", path)
		}
		closers = append(closers, func() error { return out.Close(ctx) })
		w = out.Writer(ctx)
	}
	switch {
	case strings.HasSuffix(path, ".bgz"):
		bw := bgzf.NewWriter(w, 1)
		closers = append(closers, bw.Close)
		w = bw
	case force || strings.HasSuffix(path, ".gz"):
		gz := gzip.NewWriter(w)
		closers = append(closers, gz.Close)
		w = gz
	}
	return w, closeAll(closers), nil
}
