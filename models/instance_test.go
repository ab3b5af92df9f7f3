package models

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestInstanceUnmarshalFoldsSpellings(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    Instance
	}{
		{
			name:    "v1 spelling",
			payload: `{"instanceName":"bot1","instanceId":"a1b2","status":"created","owner":"5511@s.whatsapp.net","profilePictureUrl":"http://pic","apikey":"tok"}`,
			want: Instance{
				Name:              "bot1",
				ID:                "a1b2",
				Status:            StatusCreated,
				OwnerJID:          "5511@s.whatsapp.net",
				ProfilePictureURL: "http://pic",
				Token:             "tok",
			},
		},
		{
			name:    "v2 spelling",
			payload: `{"name":"bot1","id":"a1b2","connectionStatus":"open","ownerJid":"5511@s.whatsapp.net","profilePicUrl":"http://pic","token":"tok"}`,
			want: Instance{
				Name:              "bot1",
				ID:                "a1b2",
				State:             StateOpen,
				OwnerJID:          "5511@s.whatsapp.net",
				ProfilePictureURL: "http://pic",
				Token:             "tok",
			},
		},
		{
			name:    "canonical wins over legacy",
			payload: `{"name":"new","instanceName":"old","state":"close","connectionStatus":"open"}`,
			want:    Instance{Name: "new", State: StateClose},
		},
		{
			name:    "status connecting without state",
			payload: `{"instanceName":"bot1","status":"connecting","state":"connecting"}`,
			want:    Instance{Name: "bot1", Status: StatusConnecting, State: StateConnecting},
		},
		{
			name:    "id only",
			payload: `{"id":"a1b2"}`,
			want:    Instance{ID: "a1b2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Instance
			if err := json.Unmarshal([]byte(tt.payload), &got); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if got.Name != tt.want.Name || got.ID != tt.want.ID {
				t.Errorf("identifiers = (%q, %q), want (%q, %q)", got.Name, got.ID, tt.want.Name, tt.want.ID)
			}
			if got.Status != tt.want.Status {
				t.Errorf("Status = %q, want %q", got.Status, tt.want.Status)
			}
			if got.State != tt.want.State {
				t.Errorf("State = %q, want %q", got.State, tt.want.State)
			}
			if got.OwnerJID != tt.want.OwnerJID {
				t.Errorf("OwnerJID = %q, want %q", got.OwnerJID, tt.want.OwnerJID)
			}
			if got.ProfilePictureURL != tt.want.ProfilePictureURL {
				t.Errorf("ProfilePictureURL = %q, want %q", got.ProfilePictureURL, tt.want.ProfilePictureURL)
			}
			if got.Token != tt.want.Token {
				t.Errorf("Token = %q, want %q", got.Token, tt.want.Token)
			}
		})
	}
}

func TestInstanceUnmarshalNoIdentifier(t *testing.T) {
	var inst Instance
	err := json.Unmarshal([]byte(`{"status":"connected"}`), &inst)
	if !errors.Is(err, ErrNoIdentifier) {
		t.Fatalf("Unmarshal() error = %v, want ErrNoIdentifier", err)
	}
}

func TestInstanceIdentifier(t *testing.T) {
	tests := []struct {
		name string
		inst Instance
		want string
	}{
		{"id wins", Instance{Name: "bot1", ID: "a1b2"}, "a1b2"},
		{"name fallback", Instance{Name: "bot1"}, "bot1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.inst.Identifier(); got != tt.want {
				t.Errorf("Identifier() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInstanceUnmarshalSettingBlock(t *testing.T) {
	payload := `{"name":"bot1","Setting":{"rejectCall":true,"msgCall":"busy"}}`
	var inst Instance
	if err := json.Unmarshal([]byte(payload), &inst); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if inst.Settings == nil {
		t.Fatal("Settings = nil, want folded from Setting block")
	}
	if !inst.Settings.RejectCall || inst.Settings.MsgCall != "busy" {
		t.Errorf("Settings = %+v, want rejectCall=true msgCall=busy", inst.Settings)
	}
}

func TestHashUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    Hash
	}{
		{"bare string", `"AB12-CD34"`, Hash("AB12-CD34")},
		{"apikey object", `{"apikey":"AB12-CD34"}`, Hash("AB12-CD34")},
		{"empty object", `{}`, Hash("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Hash
			if err := json.Unmarshal([]byte(tt.payload), &got); err != nil {
				t.Fatalf("Unmarshal(%s) error = %v", tt.payload, err)
			}
			if got != tt.want {
				t.Errorf("Hash = %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("array rejected", func(t *testing.T) {
		var got Hash
		if err := json.Unmarshal([]byte(`[1,2]`), &got); err == nil {
			t.Fatal("Unmarshal() error = nil, want decode failure")
		}
	})
}

func TestQRCodeAccessors(t *testing.T) {
	payload := `{"base64":"data:image/png;base64,iVBOR","code":"2@abc","pairingCode":"WZYEH1YY","count":3}`

	var qr QRCode
	if err := json.Unmarshal([]byte(payload), &qr); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got := qr.Base64(); got != "data:image/png;base64,iVBOR" {
		t.Errorf("Base64() = %q", got)
	}
	if got := qr.Code(); got != "2@abc" {
		t.Errorf("Code() = %q", got)
	}
	if got := qr.PairingCode(); got != "WZYEH1YY" {
		t.Errorf("PairingCode() = %q", got)
	}
	count, ok := qr.Count()
	if !ok || count != 3 {
		t.Errorf("Count() = (%d, %v), want (3, true)", count, ok)
	}
}

func TestQRCodeNestedPayload(t *testing.T) {
	payload := `{"qrcode":{"base64":"xyz","count":0},"instance":{"instanceName":"bot1"}}`

	var qr QRCode
	if err := json.Unmarshal([]byte(payload), &qr); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got := qr.Base64(); got != "xyz" {
		t.Errorf("Base64() = %q, want nested value", got)
	}
	count, ok := qr.Count()
	if !ok || count != 0 {
		t.Errorf("Count() = (%d, %v), want (0, true)", count, ok)
	}
}

func TestInstanceResponseQRCodeBase64(t *testing.T) {
	payload := `{"instance":{"instanceName":"bot1"},"qrcode":{"base64":"data:image/png;base64,iVBOR"}}`
	var resp InstanceResponse
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got := resp.QRCodeBase64(); got != "data:image/png;base64,iVBOR" {
		t.Errorf("QRCodeBase64() = %q", got)
	}

	var empty InstanceResponse
	if got := empty.QRCodeBase64(); got != "" {
		t.Errorf("QRCodeBase64() on empty response = %q, want empty", got)
	}
}

func TestQRCodeCountAbsent(t *testing.T) {
	var qr QRCode
	if err := json.Unmarshal([]byte(`{"base64":"xyz"}`), &qr); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if _, ok := qr.Count(); ok {
		t.Error("Count() ok = true, want false when field is absent")
	}
}

func TestQRCodeRoundTrip(t *testing.T) {
	payload := `{"base64":"xyz","count":7,"pending":true}`
	var qr QRCode
	if err := json.Unmarshal([]byte(payload), &qr); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	out, err := json.Marshal(qr)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var again QRCode
	if err := json.Unmarshal(out, &again); err != nil {
		t.Fatalf("Unmarshal(round trip) error = %v", err)
	}
	count, ok := again.Count()
	if !ok || count != 7 {
		t.Errorf("Count() after round trip = (%d, %v), want (7, true)", count, ok)
	}
	if again.Fields["pending"] != true {
		t.Errorf("pending after round trip = %v, want true", again.Fields["pending"])
	}
}

func TestParseInstanceList(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		wantNames []string
	}{
		{
			name:      "raw array",
			payload:   `[{"name":"a"},{"name":"b"}]`,
			wantNames: []string{"a", "b"},
		},
		{
			name:      "instances wrapper",
			payload:   `{"instances":[{"instanceName":"a"},{"instanceName":"b"}]}`,
			wantNames: []string{"a", "b"},
		},
		{
			name:      "per element envelope",
			payload:   `[{"instance":{"instanceName":"a","status":"connected"}},{"instance":{"instanceName":"b"}}]`,
			wantNames: []string{"a", "b"},
		},
		{
			name:      "single bare object",
			payload:   `{"instanceName":"solo","status":"connected"}`,
			wantNames: []string{"solo"},
		},
		{
			name:      "single enveloped object",
			payload:   `{"instance":{"instanceName":"solo"}}`,
			wantNames: []string{"solo"},
		},
		{
			name:      "empty array",
			payload:   `[]`,
			wantNames: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInstanceList([]byte(tt.payload))
			if err != nil {
				t.Fatalf("ParseInstanceList() error = %v", err)
			}
			if len(got) != len(tt.wantNames) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.wantNames))
			}
			for i, want := range tt.wantNames {
				if got[i].Name != want {
					t.Errorf("instance[%d].Name = %q, want %q", i, got[i].Name, want)
				}
			}
		})
	}
}

func TestParseInstanceListKeepsStatuses(t *testing.T) {
	payload := `[{"id":"a","status":"connected"},{"id":"b","status":"connecting"}]`
	got, err := ParseInstanceList([]byte(payload))
	if err != nil {
		t.Fatalf("ParseInstanceList() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != "a" || got[0].Status != StatusConnected {
		t.Errorf("instance[0] = %+v, want id a status connected", got[0])
	}
	if got[1].ID != "b" || got[1].Status != StatusConnecting {
		t.Errorf("instance[1] = %+v, want id b status connecting", got[1])
	}
}

func TestParseInstanceListRejectsBadShapes(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"scalar", `42`},
		{"object with neither instances nor identifier", `{"count":2}`},
		{"element without identifier", `[{"status":"connected"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseInstanceList([]byte(tt.payload)); err == nil {
				t.Fatal("ParseInstanceList() error = nil, want failure")
			}
		})
	}
}
