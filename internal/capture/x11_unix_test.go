//go:build linux || freebsd || openbsd || netbsd || dragonfly

package capture

import (
	"testing"

	"github.com/jezek/xgb/xproto"
)

func TestXImageToRGBA(t *testing.T) {
	formats := []xproto.Format{{Depth: 24, BitsPerPixel: 32}, {Depth: 32, BitsPerPixel: 32}}
	reply := &xproto.GetImageReply{
		Depth: 24,
		Data: []byte{
			1, 2, 3, 0, 4, 5, 6, 0,
			7, 8, 9, 0, 10, 11, 12, 0,
		},
	}
	img, err := xImageToRGBA(formats, reply, 2, 2)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if got := img.RGBAAt(1, 0); got.R != 6 || got.G != 5 || got.B != 4 || got.A != 255 {
		t.Fatalf("pixel (1,0) = %+v", got)
	}
	if got := img.RGBAAt(0, 1); got.R != 9 || got.B != 7 {
		t.Fatalf("pixel (0,1) = %+v", got)
	}

	reply.Depth = 32
	reply.Data[3] = 128
	img, err = xImageToRGBA(formats, reply, 2, 2)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if got := img.RGBAAt(0, 0).A; got != 128 {
		t.Fatalf("alpha %d, want 128", got)
	}
}

func TestXImageToRGBAErrors(t *testing.T) {
	formats := []xproto.Format{{Depth: 24, BitsPerPixel: 32}}
	if _, err := xImageToRGBA(formats, &xproto.GetImageReply{Depth: 16, Data: make([]byte, 8)}, 2, 1); err == nil {
		t.Fatalf("expected error for unknown depth")
	}
	if _, err := xImageToRGBA(formats, &xproto.GetImageReply{Depth: 24, Data: make([]byte, 7)}, 2, 1); err == nil {
		t.Fatalf("expected error for bad stride")
	}
	if _, err := xImageToRGBA(formats, nil, 2, 1); err == nil {
		t.Fatalf("expected error for missing reply")
	}
	if _, err := xImageToRGBA(formats, &xproto.GetImageReply{Depth: 24, Data: make([]byte, 8)}, 0, 1); err == nil {
		t.Fatalf("expected error for empty geometry")
	}
}
