package tracing

import (
	"net/http"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
)

// TracingTransport wraps outgoing requests of the geocode, routing and
// search clients in a client span when the request context carries one.
type TracingTransport struct {
	Transport http.RoundTripper
}

func (t *TracingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	transport := t.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	parentSpan := opentracing.SpanFromContext(req.Context())
	if parentSpan == nil {
		return transport.RoundTrip(req)
	}

	tracer := parentSpan.Tracer()
	childSpan := tracer.StartSpan(req.Method+" "+req.URL.Path, opentracing.ChildOf(parentSpan.Context()))
	defer childSpan.Finish()

	ext.SpanKindRPCClient.Set(childSpan)
	ext.HTTPUrl.Set(childSpan, req.URL.String())
	ext.HTTPMethod.Set(childSpan, req.Method)

	tracer.Inject(childSpan.Context(), opentracing.HTTPHeaders, opentracing.HTTPHeadersCarrier(req.Header))
	res, err := transport.RoundTrip(req)
	if err != nil {
		ext.Error.Set(childSpan, true)
		return res, err
	}

	ext.HTTPStatusCode.Set(childSpan, uint16(res.StatusCode))
	ext.Error.Set(childSpan, res.StatusCode >= 400)
	return res, err
}
