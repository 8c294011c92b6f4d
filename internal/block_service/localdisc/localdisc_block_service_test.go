package localdisc

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	bs "github.com/AnishMulay/fatstore/internal/block_service"
	"github.com/AnishMulay/fatstore/internal/log_service/zaplog"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T, dir string) *LocalDiscBlockService {
	t.Helper()
	s, err := NewLocalDiscBlockService(dir, 4, 8, zaplog.NewFromLogger(zap.NewNop(), "test"))
	if err != nil {
		t.Fatalf("NewLocalDiscBlockService() error = %v", err)
	}
	return s
}

func TestLocalDiscBlockService_WriteBlock(t *testing.T) {
	tests := []struct {
		name    string
		index   int
		data    bs.Block
		wantErr error
	}{
		{name: "first block", index: 0, data: bs.Block("abcdefgh")},
		{name: "last block", index: 3, data: bs.Block{0x00, 0x01, 0x02, 0xFF, 0, 0, 0, 0}},
		{name: "past the end", index: 4, data: make(bs.Block, 8), wantErr: bs.ErrOutOfRange},
		{name: "negative index", index: -1, data: make(bs.Block, 8), wantErr: bs.ErrOutOfRange},
		{name: "short block", index: 1, data: bs.Block("abc"), wantErr: bs.ErrBadBlockSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t, t.TempDir())

			err := s.WriteBlock(tt.index, tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("WriteBlock() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}

			written, err := os.ReadFile(s.blockPath(tt.index))
			if err != nil {
				t.Fatalf("block file not written: %v", err)
			}
			if !bytes.Equal(written, tt.data) {
				t.Errorf("block file = %v, want %v", written, tt.data)
			}
		})
	}
}

func TestLocalDiscBlockService_ReadBlock(t *testing.T) {
	s := newTestStore(t, t.TempDir())

	got, err := s.ReadBlock(2)
	if err != nil {
		t.Fatalf("ReadBlock() of unwritten block error = %v", err)
	}
	if !bytes.Equal(got, make([]byte, 8)) {
		t.Errorf("unwritten block = %v, want zeroes", got)
	}

	if err := s.WriteBlock(2, bs.Block("12345678")); err != nil {
		t.Fatalf("WriteBlock() error = %v", err)
	}
	got, err = s.ReadBlock(2)
	if err != nil || string(got) != "12345678" {
		t.Errorf("ReadBlock() = %q, %v", got, err)
	}

	if _, err := s.ReadBlock(9); !errors.Is(err, bs.ErrOutOfRange) {
		t.Errorf("ReadBlock(9) error = %v, want %v", err, bs.ErrOutOfRange)
	}
}

func TestLocalDiscBlockService_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	if err := newTestStore(t, dir).WriteBlock(1, bs.Block("persists")); err != nil {
		t.Fatalf("WriteBlock() error = %v", err)
	}

	got, err := newTestStore(t, dir).ReadBlock(1)
	if err != nil || string(got) != "persists" {
		t.Errorf("ReadBlock() from new instance = %q, %v", got, err)
	}
}

func TestLocalDiscBlockService_Reset(t *testing.T) {
	dir := t.TempDir()
	s := newTestStore(t, dir)
	for i := 0; i < 3; i++ {
		if err := s.WriteBlock(i, bs.Block("xxxxxxxx")); err != nil {
			t.Fatalf("WriteBlock(%d) error = %v", i, err)
		}
	}
	other := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(other, []byte("keep"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if err := s.Reset(); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	got, _ := s.ReadBlock(0)
	if !bytes.Equal(got, make([]byte, 8)) {
		t.Errorf("block after Reset = %v, want zeroes", got)
	}
	if _, err := os.Stat(other); err != nil {
		t.Errorf("Reset() removed unrelated file: %v", err)
	}
}

func TestLocalDiscBlockService_WriteFailure(t *testing.T) {
	dir := t.TempDir()
	s := newTestStore(t, dir)
	// a directory where the block file should go makes the write fail
	if err := os.Mkdir(s.blockPath(0), 0755); err != nil {
		t.Fatalf("Mkdir() error = %v", err)
	}

	err := s.WriteBlock(0, make(bs.Block, 8))
	if !errors.Is(err, bs.ErrWriteFailed) {
		t.Errorf("WriteBlock() error = %v, want %v", err, bs.ErrWriteFailed)
	}
}
