package recordpb

import (
	"encoding/hex"
	"fmt"
	"strconv"

	cacheapp "github.com/osvaldoandrade/ledgerproof/internal/app/cache"
	"github.com/osvaldoandrade/ledgerproof/internal/domain"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

type Codec struct{}

func (Codec) Encode(record cacheapp.Record) ([]byte, error) {
	return Encode(record)
}

func (Codec) Decode(data []byte) (cacheapp.Record, error) {
	return Decode(data)
}

func Encode(record cacheapp.Record) ([]byte, error) {
	if len(record.Path) == 0 {
		return nil, cacheapp.ErrPathRequired
	}

	return proto.MarshalOptions{Deterministic: true}.Marshal(toProto(record))
}

func Decode(data []byte) (cacheapp.Record, error) {
	var pb structpb.Struct
	if err := proto.Unmarshal(data, &pb); err != nil {
		return cacheapp.Record{}, fmt.Errorf("decode record: %w", err)
	}

	return fromProto(&pb)
}

// toProto flattens the record into a struct value. State paths may hold raw
// digest bytes, so they travel hex-encoded; verification times are nanosecond
// counts past float64 integer range, so they travel as decimal strings.
func toProto(record cacheapp.Record) *structpb.Struct {
	fields := map[string]*structpb.Value{
		"id":         structpb.NewStringValue(record.ID),
		"path":       structpb.NewStringValue(record.Path.Hex()),
		"envelope":   structpb.NewStringValue(string(record.Envelope)),
		"seqNo":      structpb.NewNumberValue(float64(record.SeqNo)),
		"txnTime":    structpb.NewNullValue(),
		"rootHash":   structpb.NewStringValue(record.RootHash),
		"verifiedAt": structpb.NewStringValue(strconv.FormatInt(record.VerifiedAt, 10)),
	}
	if record.TxnTime != nil {
		fields["txnTime"] = structpb.NewNumberValue(float64(*record.TxnTime))
	}
	return &structpb.Struct{Fields: fields}
}

func fromProto(pb *structpb.Struct) (cacheapp.Record, error) {
	fields := pb.GetFields()

	path, err := hex.DecodeString(fields["path"].GetStringValue())
	if err != nil {
		return cacheapp.Record{}, fmt.Errorf("decode record path: %w", err)
	}

	record := cacheapp.Record{
		ID:       fields["id"].GetStringValue(),
		Path:     domain.StatePath(path),
		Envelope: []byte(fields["envelope"].GetStringValue()),
		SeqNo:    uint64(fields["seqNo"].GetNumberValue()),
		RootHash: fields["rootHash"].GetStringValue(),
	}

	if value, ok := fields["txnTime"]; ok {
		if _, isNull := value.GetKind().(*structpb.Value_NullValue); !isNull {
			txnTime := uint64(value.GetNumberValue())
			record.TxnTime = &txnTime
		}
	}

	if encoded := fields["verifiedAt"].GetStringValue(); encoded != "" {
		verifiedAt, err := strconv.ParseInt(encoded, 10, 64)
		if err != nil {
			return cacheapp.Record{}, fmt.Errorf("decode record timestamp: %w", err)
		}
		record.VerifiedAt = verifiedAt
	}

	return record, nil
}
