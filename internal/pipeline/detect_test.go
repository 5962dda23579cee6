package pipeline

import "testing"

func TestDetectReceipt(t *testing.T) {
	cases := []struct {
		name        string
		subject     string
		text        string
		html        string
		attachments []string
		want        bool
	}{
		{
			name:    "invoice subject with table text",
			subject: "Fwd: Purchase Invoice",
			text:    "Item Description  Qty  Net Amt\nParle-G  10  110.50\nTata Salt  5  140",
			want:    true,
		},
		{
			name:        "plain mail with xlsx attachment",
			subject:     "bill from distributor",
			text:        "see attached",
			attachments: []string{"august_bill.xlsx"},
			want:        true,
		},
		{
			name:    "html receipt table",
			subject: "your receipt",
			html:    "<table><tr><td>qty</td><td>amount</td></tr></table>",
			want:    true,
		},
		{
			name:    "newsletter",
			subject: "Weekly deals just for you",
			text:    "Check out our latest offers and save big this weekend.",
			want:    false,
		},
		{
			name: "empty mail",
			want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := DetectReceipt(tc.subject, tc.text, tc.html, tc.attachments)
			if res.IsReceipt != tc.want {
				t.Fatalf("got %v (score=%v reason=%s) want %v", res.IsReceipt, res.Score, res.Reason, tc.want)
			}
		})
	}
}
