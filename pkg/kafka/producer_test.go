package kafka

import (
	"testing"

	"github.com/segmentio/kafka-go"
)

func TestNewProducerRequiresBrokers(t *testing.T) {
	if _, err := NewProducer(); err == nil {
		t.Fatalf("expected error without brokers")
	}
}

func TestNewProducerOptions(t *testing.T) {
	p, err := NewProducer(WithBrokers([]string{"localhost:9092"}), WithCompression("lz4"), WithRequiredAcks(1))
	if err != nil {
		t.Fatalf("new producer: %v", err)
	}
	defer p.Close()
	if p.writer.Compression != kafka.Lz4 || p.writer.RequiredAcks != kafka.RequireOne {
		t.Fatalf("options not applied: %v %v", p.writer.Compression, p.writer.RequiredAcks)
	}
}

func TestEncode(t *testing.T) {
	cases := []struct {
		in   interface{}
		want string
	}{
		{[]byte("raw"), "raw"},
		{"text", "text"},
		{map[string]int{"count": 3}, `{"count":3}`},
	}
	for _, tc := range cases {
		b, err := encode(tc.in)
		if err != nil {
			t.Fatalf("encode %v: %v", tc.in, err)
		}
		if string(b) != tc.want {
			t.Fatalf("want %s, got %s", tc.want, b)
		}
	}
}
