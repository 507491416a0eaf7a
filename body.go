package weave

import "io"

// boundedBody wraps an incoming body so reads beyond limit fail with a
// terminal *bodyTooLarge error instead of silently truncating, modeled on
// the original implementation's LimitedIncoming (original_source/silent/
// src/core/req_body.rs): track bytes seen, and once a read would push the
// running total past limit, stop handing out bytes and report the
// over-limit error instead of the underlying read's own result.
type boundedBody struct {
	inner io.ReadCloser
	seen int64
	limit int64
}

// newBoundedBody returns inner unchanged when limit <= 0 (no bound
// configured); otherwise wraps it.
func newBoundedBody(inner io.ReadCloser, limit int64) io.ReadCloser {
	if limit <= 0 {
		return inner
	}
	return &boundedBody{inner: inner, limit: limit}
}

func (b *boundedBody) Read(p []byte) (int, error) {
	if b.seen > b.limit {
		return 0, &bodyTooLarge{limit: b.limit}
	}
	if int64(len(p)) > b.limit-b.seen+1 {
		p = p[:b.limit-b.seen+1]
	}
	n, err := b.inner.Read(p)
	b.seen += int64(n)
	if b.seen > b.limit {
		return n, &bodyTooLarge{limit: b.limit}
	}
	return n, err
}

func (b *boundedBody) Close() error {
	return b.inner.Close()
}
