package analyzer

import (
	"strings"
	"testing"
)

func TestDigestBytes(t *testing.T) {
	got := DigestBytes([]byte("hello"))
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if got != want {
		t.Errorf("DigestBytes(hello) = %s, want %s", got, want)
	}
}

func TestDigestBytesEmpty(t *testing.T) {
	got := DigestBytes(nil)
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got != want {
		t.Errorf("DigestBytes(nil) = %s, want %s", got, want)
	}
}

func TestDigestBytesDeterministic(t *testing.T) {
	data := []byte("the same input")
	if DigestBytes(data) != DigestBytes(data) {
		t.Error("DigestBytes is not deterministic for identical input")
	}
}

func TestDigestBytesDiffers(t *testing.T) {
	if DigestBytes([]byte("a")) == DigestBytes([]byte("b")) {
		t.Error("DigestBytes returned the same digest for different inputs")
	}
}

func TestDigestStreamMatchesBytes(t *testing.T) {
	data := "streamed payload content"

	got, err := Digest(strings.NewReader(data))
	if err != nil {
		t.Fatalf("Digest returned error: %v", err)
	}

	if want := DigestBytes([]byte(data)); got != want {
		t.Errorf("Digest = %s, want %s", got, want)
	}
}
