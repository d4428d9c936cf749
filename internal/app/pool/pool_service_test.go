package pool

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/osvaldoandrade/ledgerproof/internal/app/request"
	"github.com/osvaldoandrade/ledgerproof/internal/domain"
)

const genesisFixture = `{"reqSignature":{},"txn":{"data":{"data":{"alias":"Node1","blskey":"4N8aUNHSgjQVzkRmIZFV","client_ip":"10.0.0.2","client_port":9702,"node_ip":"10.0.0.2","node_port":9701,"services":["VALIDATOR"]},"dest":"Gw6pDLhcBcoQesN72qfotTgFa7cbuqZpkX3Xo6pLhPhv"},"metadata":{"from":"Th7MpTaRZVRYnPiabds81Y"},"type":"0"},"txnMetadata":{"seqNo":1,"txnId":"fea82e10e894419fe2bea7d96296a6d46f50f93f9eeda954ec461b2ed2950b62"},"ver":"1"}

{"reqSignature":{},"txn":{"data":{"data":{"alias":"Node2","client_ip":"10.0.0.3","client_port":9704,"node_ip":"10.0.0.3","node_port":9703,"services":["VALIDATOR"]},"dest":"8ECVSk179mjsjKRLWiQtssMLgp6EPhWXtaYyStWPSGAb"},"metadata":{"from":"EbP4aYNeTHL6q385GuVpRV"},"type":"0"},"txnMetadata":{"seqNo":2,"txnId":"1ac8aece2a18ced660fef8694b61aac3af08ba875ce3026a160acbc3a3af35fc"},"ver":"1"}
`

type fakeGenesisSource struct {
	data []byte
	err  error
}

func (f fakeGenesisSource) ReadGenesis(_ context.Context, _ string) ([]byte, error) {
	return f.data, f.err
}

type fakeNodeClient struct {
	reply   []byte
	err     error
	gotAddr string
	gotBody []byte
}

func (f *fakeNodeClient) Submit(_ context.Context, addr string, request []byte) ([]byte, error) {
	f.gotAddr = addr
	f.gotBody = request
	return f.reply, f.err
}

type fakeReplyValidator struct {
	err    error
	called bool
}

func (f *fakeReplyValidator) ValidateReply(_ context.Context, _ []byte) error {
	f.called = true
	return f.err
}

type fakeClock struct {
	now time.Time
}

func (f fakeClock) Now() time.Time {
	return f.now
}

func TestLoadPool(t *testing.T) {
	loadedAt := time.Unix(1514304094, 0).UTC()
	service := NewService(fakeGenesisSource{data: []byte(genesisFixture)}, &fakeNodeClient{}, &fakeReplyValidator{}, fakeClock{now: loadedAt})

	info, err := service.Load(context.Background(), "sandbox", "pool_transactions_genesis")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if info.Name != "sandbox" {
		t.Fatalf("Name = %q, want sandbox", info.Name)
	}
	if !info.LoadedAt.Equal(loadedAt) {
		t.Fatalf("LoadedAt = %v, want %v", info.LoadedAt, loadedAt)
	}
	if len(info.Nodes) != 2 {
		t.Fatalf("Nodes = %d, want 2", len(info.Nodes))
	}
	if info.Nodes[0].Alias != "Node1" || info.Nodes[0].Addr != "10.0.0.2:9702" {
		t.Fatalf("first node = %+v", info.Nodes[0])
	}
	if info.Nodes[1].Dest != "8ECVSk179mjsjKRLWiQtssMLgp6EPhWXtaYyStWPSGAb" {
		t.Fatalf("second node dest = %q", info.Nodes[1].Dest)
	}
}

func TestLoadPoolRejectsMalformedLine(t *testing.T) {
	data := []byte("{\"txn\":{\"type\":\"0\",\"data\":{\"data\":{\"alias\":\"Node1\",\"client_ip\":\"10.0.0.2\",\"client_port\":9702,\"services\":[\"VALIDATOR\"]}}}}\nnot json\n")
	service := NewService(fakeGenesisSource{data: data}, &fakeNodeClient{}, &fakeReplyValidator{}, fakeClock{})

	_, err := service.Load(context.Background(), "sandbox", "genesis")
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("err = %v, want parse failure naming line 2", err)
	}
}

func TestLoadPoolRejectsNonNodeTxn(t *testing.T) {
	data := []byte(`{"txn":{"type":"1","data":{"dest":"N22KY2Dyvmuu2PyyqSFKue"}},"ver":"1"}`)
	service := NewService(fakeGenesisSource{data: data}, &fakeNodeClient{}, &fakeReplyValidator{}, fakeClock{})

	_, err := service.Load(context.Background(), "sandbox", "genesis")
	if !errors.Is(err, domain.ErrNotNodeTxn) {
		t.Fatalf("err = %v, want %v", err, domain.ErrNotNodeTxn)
	}
}

func TestLoadPoolRequiresValidators(t *testing.T) {
	data := []byte(`{"txn":{"type":"0","data":{"data":{"alias":"Observer1","client_ip":"10.0.0.9","client_port":9702,"services":[]},"dest":"D1"}},"ver":"1"}`)
	service := NewService(fakeGenesisSource{data: data}, &fakeNodeClient{}, &fakeReplyValidator{}, fakeClock{})

	_, err := service.Load(context.Background(), "sandbox", "genesis")
	if !errors.Is(err, domain.ErrNoValidators) {
		t.Fatalf("err = %v, want %v", err, domain.ErrNoValidators)
	}
}

func TestNodePicksFirstValidator(t *testing.T) {
	info := domain.PoolInfo{Nodes: []domain.Node{
		{Alias: "Observer1", Addr: "10.0.0.9:9702"},
		{Alias: "Node1", Addr: "10.0.0.2:9702", Services: []string{domain.ServiceValidator}},
	}}
	service := NewService(fakeGenesisSource{}, &fakeNodeClient{}, &fakeReplyValidator{}, fakeClock{})

	node, err := service.Node(info, "")
	if err != nil {
		t.Fatalf("Node: %v", err)
	}
	if node.Alias != "Node1" {
		t.Fatalf("Alias = %q, want Node1", node.Alias)
	}
}

func TestNodeByAlias(t *testing.T) {
	info := domain.PoolInfo{Nodes: []domain.Node{
		{Alias: "Node1", Addr: "10.0.0.2:9702", Services: []string{domain.ServiceValidator}},
		{Alias: "Node2", Addr: "10.0.0.3:9704", Services: []string{domain.ServiceValidator}},
	}}
	service := NewService(fakeGenesisSource{}, &fakeNodeClient{}, &fakeReplyValidator{}, fakeClock{})

	node, err := service.Node(info, "Node2")
	if err != nil {
		t.Fatalf("Node: %v", err)
	}
	if node.Addr != "10.0.0.3:9704" {
		t.Fatalf("Addr = %q", node.Addr)
	}

	if _, err := service.Node(info, "Node9"); !errors.Is(err, ErrNodeUnknown) {
		t.Fatalf("err = %v, want %v", err, ErrNodeUnknown)
	}
}

func TestSubmit(t *testing.T) {
	client := &fakeNodeClient{reply: []byte(`{"op":"REPLY","result":{"type":"105","seqNo":10}}`)}
	validator := &fakeReplyValidator{}
	service := NewService(fakeGenesisSource{}, client, validator, fakeClock{})

	builder := request.NewBuilder(fakeIDSource{}, "L5AD5g65TDQr1PPHHRoiGf")
	req, err := builder.GetNym("N22KY2Dyvmuu2PyyqSFKue")
	if err != nil {
		t.Fatalf("GetNym: %v", err)
	}

	node := domain.Node{Alias: "Node1", Addr: "10.0.0.2:9702"}
	reply, err := service.Submit(context.Background(), node, req)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if client.gotAddr != "10.0.0.2:9702" {
		t.Fatalf("addr = %q", client.gotAddr)
	}
	if !validator.called {
		t.Fatal("reply validator was not consulted")
	}
	var sent request.Request
	if err := json.Unmarshal(client.gotBody, &sent); err != nil {
		t.Fatalf("unmarshal submitted body: %v", err)
	}
	if sent.ProtocolVersion != 2 {
		t.Fatalf("protocolVersion = %d, want 2", sent.ProtocolVersion)
	}
	if string(reply.Result) != `{"type":"105","seqNo":10}` {
		t.Fatalf("result = %s", reply.Result)
	}
}

func TestSubmitRejectsNack(t *testing.T) {
	client := &fakeNodeClient{reply: []byte(`{"op":"REQNACK","reason":"client request invalid"}`)}
	service := NewService(fakeGenesisSource{}, client, &fakeReplyValidator{}, fakeClock{})

	_, err := service.Submit(context.Background(), domain.Node{Alias: "Node1"}, request.Request{})
	if !errors.Is(err, domain.ErrRequestRejected) {
		t.Fatalf("err = %v, want %v", err, domain.ErrRequestRejected)
	}
}

func TestSubmitStopsOnInvalidReplyShape(t *testing.T) {
	client := &fakeNodeClient{reply: []byte(`{"op":"REPLY"}`)}
	validator := &fakeReplyValidator{err: errors.New("reply does not match schema")}
	service := NewService(fakeGenesisSource{}, client, validator, fakeClock{})

	_, err := service.Submit(context.Background(), domain.Node{Alias: "Node1"}, request.Request{})
	if err == nil || !strings.Contains(err.Error(), "schema") {
		t.Fatalf("err = %v, want validator failure", err)
	}
}

func TestSubmitWrapsTransportError(t *testing.T) {
	client := &fakeNodeClient{err: errors.New("connection refused")}
	service := NewService(fakeGenesisSource{}, client, &fakeReplyValidator{}, fakeClock{})

	_, err := service.Submit(context.Background(), domain.Node{Alias: "Node1"}, request.Request{})
	if err == nil || !strings.Contains(err.Error(), "Node1") {
		t.Fatalf("err = %v, want transport failure naming the node", err)
	}
}

type fakeIDSource struct{}

func (fakeIDSource) ReqID() uint32 {
	return 7
}
