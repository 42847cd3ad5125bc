// Package libheif adapts libheif to the heif plugin interfaces.
//
// The Go binding of libheif reads and writes complete files only. Decoding
// wraps the bitstream a heif.Context pushes into a one-item HEIF file;
// encoding lets libheif write a file and takes the coded units back out of
// it. Build with the libheif tag to get the plugins; without it only the
// file helpers are compiled.
package libheif

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gogpu/heif/container"
	"github.com/gogpu/heif/hevc"
)

// errNoSPS is returned when the pushed bitstream carries no SPS.
var errNoSPS = errors.New("libheif: bitstream has no SPS")

// wrapBitstream builds a HEIF file holding data, a sequence of length
// prefixed HEVC units, as its only image. Parameter sets go to hvcC and the
// remaining units to the item payload.
func wrapBitstream(data []byte) ([]byte, error) {
	units, err := hevc.SplitLengthPrefixed(data)
	if err != nil {
		return nil, err
	}

	s := container.New()
	id := s.NewImageItem("hvc1")
	s.SetPrimaryItemID(id)

	var haveSPS bool
	for _, nal := range units {
		t := hevc.UnitType(nal)
		if t == hevc.NALSPS {
			sps, err := hevc.ParseSPS(nal)
			if err != nil {
				return nil, err
			}
			cfg, err := s.CodecConfiguration(id)
			if err != nil {
				return nil, err
			}
			sps.Configure(&cfg)
			if err := s.SetCodecConfiguration(id, cfg); err != nil {
				return nil, err
			}
			s.SetSpatialExtent(id, uint32(sps.Width()), uint32(sps.Height()))
			haveSPS = true
		}
		if hevc.IsParameterSet(t) {
			err = s.AppendConfigurationUnit(id, nal)
		} else {
			err = s.AppendPayload(id, nal, true)
		}
		if err != nil {
			return nil, err
		}
	}
	if !haveSPS {
		return nil, errNoSPS
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// unitsOfPrimary returns the coded units of the primary image of a HEIF
// file: the hvcC parameter sets followed by the item data, without length
// prefixes.
func unitsOfPrimary(file []byte) ([][]byte, error) {
	s, err := container.Read(bytes.NewReader(file))
	if err != nil {
		return nil, err
	}
	id := s.PrimaryItemID()
	if info, ok := s.ItemInfo(id); !ok || info.Type != "hvc1" {
		return nil, fmt.Errorf("libheif: primary item %d is not an hvc1 image", id)
	}
	payload, err := s.CompressedPayload(id)
	if err != nil {
		return nil, err
	}
	return hevc.SplitLengthPrefixed(payload)
}
