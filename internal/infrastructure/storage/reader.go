package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"

	"isogrid-server/internal/domain"
)

// Load читает журнал, записанный Save.
func (s *ReplayService) Load(path string) (*domain.ReplaySession, error) {
	return LoadFile(path)
}

func LoadFile(path string) (*domain.ReplaySession, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	session, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return session, nil
}

// Decode читает сжатый журнал из r.
func Decode(r io.Reader) (*domain.ReplaySession, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return readBinary(dec)
}

func readBinary(r io.Reader) (*domain.ReplaySession, error) {
	// 1. Читаем заголовок целиком
	var header ReplayFileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	// Валидация
	if string(header.Magic[:]) != MagicHeader {
		return nil, ErrBadMagic
	}
	if header.Version != Version1 {
		return nil, fmt.Errorf("version %d (expected %d): %w", header.Version, Version1, ErrUnsupportedVersion)
	}

	sessionID := make([]byte, header.SessionIDLen)
	if _, err := io.ReadFull(r, sessionID); err != nil {
		return nil, fmt.Errorf("failed to read session id: %w", err)
	}

	session := &domain.ReplaySession{
		SessionID: string(sessionID),
		Seed:      header.Seed,
		Timestamp: header.Timestamp,
		LevelID:   int(header.LevelID),
		TickRate:  int(header.TickRate),
		Actions:   make([]domain.ReplayAction, header.ActionCount),
	}

	// 2. Читаем Actions
	for i := range session.Actions {
		var ah ActionHeader
		if err := binary.Read(r, binary.LittleEndian, &ah); err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}

		act := domain.ReplayAction{
			Tick:   ah.Tick,
			Token:  domain.EntityID(ah.Token),
			Action: domain.ActionType(ah.ActionType),
		}
		if ah.PayloadLen > 0 {
			act.Payload = make(json.RawMessage, ah.PayloadLen)
			if _, err := io.ReadFull(r, act.Payload); err != nil {
				return nil, fmt.Errorf("action %d payload: %w", i, err)
			}
		}

		session.Actions[i] = act
	}

	return session, nil
}
