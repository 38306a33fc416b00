package storage

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"isogrid-server/internal/domain"
)

const (
	MagicHeader string = `ISRP` // 4 байта
	Version1    uint32 = 1

	// FileExt - журнал всегда сжат zstd целиком, заголовок внутри сжатого потока.
	FileExt = ".isrp.zst"
)

var (
	ErrBadMagic           = errors.New("not a replay journal")
	ErrUnsupportedVersion = errors.New("unsupported journal version")
)

// ReplayFileHeader — это точное представление заголовка файла в памяти.
// binary.Write умеет писать это целиком, так как тут нет слайсов и строк, только массивы и числа.
type ReplayFileHeader struct {
	Magic        [4]byte // 4 байта
	Version      uint32  // 4 байта
	Seed         int64   // 8 байт
	Timestamp    int64   // 8 байт
	LevelID      int32   // 4 байта
	TickRate     int32   // 4 байта
	ActionCount  uint32  // 4 байта
	SessionIDLen uint8   // 1 байт, затем сами байты ID
}

// ActionHeader — заголовок каждой записи действия.
type ActionHeader struct {
	Tick       uint64 // 8
	Token      uint64 // 8, упакованный EntityID
	ActionType uint8  // 1
	PayloadLen uint16 // 2
}

type ReplayService struct {
	SaveDir string
}

// NewReplayService создает каталог журналов, если его нет.
func NewReplayService(dir string) (*ReplayService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("replay dir %s: %w", dir, err)
	}
	return &ReplayService{SaveDir: dir}, nil
}

// Save пишет журнал уровня и возвращает путь к файлу.
func (s *ReplayService) Save(session *domain.ReplaySession) (string, error) {
	filename := fmt.Sprintf("replay_lvl%d_%s%s", session.LevelID, session.SessionID, FileExt)
	path := filepath.Join(s.SaveDir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := Encode(f, session); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}
	return path, f.Sync()
}

// Encode пишет сжатый журнал в w.
func Encode(w io.Writer, session *domain.ReplaySession) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	buf := bufio.NewWriterSize(enc, 64*1024)

	if err := writeBinary(buf, session); err != nil {
		_ = enc.Close()
		return err
	}
	if err := buf.Flush(); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

func writeBinary(w io.Writer, s *domain.ReplaySession) error {
	sessionID := []byte(s.SessionID)
	if len(sessionID) > 255 {
		return fmt.Errorf("session id too long: %d", len(sessionID))
	}

	// 1. Подготавливаем и пишем ГЛОБАЛЬНЫЙ ЗАГОЛОВОК
	header := ReplayFileHeader{
		Version:      Version1,
		Seed:         s.Seed,
		Timestamp:    s.Timestamp,
		LevelID:      int32(s.LevelID),
		TickRate:     int32(s.TickRate),
		ActionCount:  uint32(len(s.Actions)),
		SessionIDLen: uint8(len(sessionID)),
	}
	copy(header.Magic[:], MagicHeader) // Копируем строку в массив [4]byte

	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := w.Write(sessionID); err != nil {
		return err
	}

	// 2. Пишем действия
	for i, act := range s.Actions {
		payloadLen := len(act.Payload)
		if payloadLen > 65535 {
			return fmt.Errorf("action %d: payload too long: %d", i, payloadLen)
		}

		actHeader := ActionHeader{
			Tick:       act.Tick,
			Token:      uint64(act.Token),
			ActionType: uint8(act.Action),
			PayloadLen: uint16(payloadLen),
		}
		if err := binary.Write(w, binary.LittleEndian, &actHeader); err != nil {
			return err
		}
		if payloadLen > 0 {
			if _, err := w.Write(act.Payload); err != nil {
				return err
			}
		}
	}

	return nil
}
