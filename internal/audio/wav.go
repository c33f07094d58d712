package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"
)

// wavHeaderSize is the size of the canonical PCM WAV header this package
// writes: RIFF descriptor, fmt chunk, and data chunk header.
const wavHeaderSize = 44

// pcmFormatCode is the fmt chunk codec id for uncompressed PCM.
const pcmFormatCode = 1

// Info describes the PCM layout of a WAV file.
type Info struct {
	SampleRate    int   // Sample frames per second.
	Channels      int   // Interleaved channels per frame.
	BitsPerSample int   // Bits per sample, per channel.
	DataOffset    int64 // Byte offset of the PCM payload.
	DataSize      int64 // Byte length of the PCM payload.
}

// FrameSize returns the byte size of one sample frame across all channels.
func (i Info) FrameSize() int {
	return i.Channels * i.BitsPerSample / 8
}

// Frames returns the number of sample frames in the data chunk.
func (i Info) Frames() int64 {
	fs := int64(i.FrameSize())
	if fs == 0 {
		return 0
	}
	return i.DataSize / fs
}

// Duration returns the play time of the data chunk.
func (i Info) Duration() time.Duration {
	if i.SampleRate == 0 {
		return 0
	}
	return time.Duration(i.Frames()) * time.Second / time.Duration(i.SampleRate)
}

// ReadInfo walks the RIFF structure of r and locates the fmt and data
// chunks. Only uncompressed PCM is accepted; anything else would need
// re-encoding before slicing.
func ReadInfo(r io.ReadSeeker) (Info, error) {
	fileSize, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrInvalidWAV, err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrInvalidWAV, err)
	}

	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrInvalidWAV, err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return Info{}, fmt.Errorf("%w: missing RIFF/WAVE header", ErrInvalidWAV)
	}

	var info Info
	haveFmt := false
	haveData := false
	offset := int64(12)

	for offset+8 <= fileSize && (!haveFmt || !haveData) {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return Info{}, fmt.Errorf("%w: truncated chunk header: %v", ErrInvalidWAV, err)
		}
		id := string(hdr[0:4])
		size := int64(binary.LittleEndian.Uint32(hdr[4:8]))
		body := offset + 8

		switch id {
		case "fmt ":
			if size < 16 {
				return Info{}, fmt.Errorf("%w: fmt chunk too small", ErrInvalidWAV)
			}
			var f [16]byte
			if _, err := io.ReadFull(r, f[:]); err != nil {
				return Info{}, fmt.Errorf("%w: truncated fmt chunk: %v", ErrInvalidWAV, err)
			}
			codec := binary.LittleEndian.Uint16(f[0:2])
			if codec != pcmFormatCode {
				return Info{}, fmt.Errorf("%w: codec %d is not PCM", ErrInvalidWAV, codec)
			}
			info.Channels = int(binary.LittleEndian.Uint16(f[2:4]))
			info.SampleRate = int(binary.LittleEndian.Uint32(f[4:8]))
			info.BitsPerSample = int(binary.LittleEndian.Uint16(f[14:16]))
			haveFmt = true
		case "data":
			info.DataOffset = body
			info.DataSize = size
			haveData = true
		}

		// Chunks are word aligned: odd sizes carry a pad byte.
		offset = body + size
		if size%2 == 1 {
			offset++
		}
		if _, err := r.Seek(offset, io.SeekStart); err != nil {
			return Info{}, fmt.Errorf("%w: %v", ErrInvalidWAV, err)
		}
	}

	if !haveFmt || !haveData {
		return Info{}, fmt.Errorf("%w: missing fmt or data chunk", ErrInvalidWAV)
	}
	if info.Channels <= 0 || info.SampleRate <= 0 ||
		info.BitsPerSample <= 0 || info.BitsPerSample%8 != 0 {
		return Info{}, fmt.Errorf("%w: unusable fmt values (rate=%d channels=%d bits=%d)",
			ErrInvalidWAV, info.SampleRate, info.Channels, info.BitsPerSample)
	}
	if info.DataOffset > fileSize {
		return Info{}, fmt.Errorf("%w: data chunk beyond end of file", ErrInvalidWAV)
	}
	// Streamed WAVs may carry a placeholder data size.
	if info.DataOffset+info.DataSize > fileSize {
		info.DataSize = fileSize - info.DataOffset
	}

	return info, nil
}

// writeWAVHeader writes a canonical 44-byte PCM header for a payload of
// dataSize bytes laid out per info.
func writeWAVHeader(w io.Writer, info Info, dataSize uint32) error {
	byteRate := info.SampleRate * info.FrameSize()

	var h [wavHeaderSize]byte
	copy(h[0:4], "RIFF")
	binary.LittleEndian.PutUint32(h[4:8], uint32(wavHeaderSize-8)+dataSize)
	copy(h[8:12], "WAVE")
	copy(h[12:16], "fmt ")
	binary.LittleEndian.PutUint32(h[16:20], 16)
	binary.LittleEndian.PutUint16(h[20:22], pcmFormatCode)
	binary.LittleEndian.PutUint16(h[22:24], uint16(info.Channels))
	binary.LittleEndian.PutUint32(h[24:28], uint32(info.SampleRate))
	binary.LittleEndian.PutUint32(h[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(h[32:34], uint16(info.FrameSize()))
	binary.LittleEndian.PutUint16(h[34:36], uint16(info.BitsPerSample))
	copy(h[36:40], "data")
	binary.LittleEndian.PutUint32(h[40:44], dataSize)

	_, err := w.Write(h[:])
	return err
}
