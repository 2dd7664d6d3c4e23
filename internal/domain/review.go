package domain

import (
	"strconv"
	"strings"
)

// Canonical column names of the persisted "Data Review" sheet.
const (
	ColReviewID             = "reviewId"
	ColDate                 = "Date"
	ColRating               = "Rating"
	ColUsername             = "Username"
	ColAppVersion           = "appVersion"
	ColTitle                = "title"
	ColDetail               = "Detail"
	ColRepliedAt            = "repliedAt"
	ColReplyContent         = "replyContent"
	ColReviewCreatedVersion = "reviewCreatedVersion"
	ColThumbsUpCount        = "thumbsUpCount"
	ColUserImage            = "userImage"
	ColApps                 = "Apps"
	ColSentiment            = "Sentiment"
)

// CanonicalColumns is the fixed order rows are written in. Sentiment is not
// part of it: the merge job never fills it.
var CanonicalColumns = []string{
	ColReviewID, ColDate, ColRating, ColUsername, ColAppVersion, ColTitle, ColDetail,
	ColRepliedAt, ColReplyContent, ColReviewCreatedVersion, ColThumbsUpCount,
	ColUserImage, ColApps,
}

// PersistedHeader is the header a freshly created "Data Review" sheet gets.
func PersistedHeader() []string {
	out := make([]string, 0, len(CanonicalColumns)+1)
	out = append(out, CanonicalColumns...)
	return append(out, ColSentiment)
}

type ReviewRecord struct {
	ReviewID             string `json:"reviewId"`
	Date                 string `json:"date"`
	Rating               string `json:"rating"`
	Username             string `json:"username"`
	AppVersion           string `json:"appVersion"`
	Title                string `json:"title"`
	Detail               string `json:"detail"`
	RepliedAt            string `json:"repliedAt"`
	ReplyContent         string `json:"replyContent"`
	ReviewCreatedVersion string `json:"reviewCreatedVersion"`
	ThumbsUpCount        string `json:"thumbsUpCount"`
	UserImage            string `json:"userImage"`
	Apps                 string `json:"apps"`
	Sentiment            string `json:"sentiment"`
}

// fields maps a lowercased column name to the record field it fills.
func (r *ReviewRecord) fields() map[string]*string {
	return map[string]*string{
		"reviewid":             &r.ReviewID,
		"date":                 &r.Date,
		"rating":               &r.Rating,
		"username":             &r.Username,
		"appversion":           &r.AppVersion,
		"title":                &r.Title,
		"detail":               &r.Detail,
		"repliedat":            &r.RepliedAt,
		"replycontent":         &r.ReplyContent,
		"reviewcreatedversion": &r.ReviewCreatedVersion,
		"thumbsupcount":        &r.ThumbsUpCount,
		"userimage":            &r.UserImage,
		"apps":                 &r.Apps,
		"sentiment":            &r.Sentiment,
	}
}

// Values renders the record in CanonicalColumns order.
func (r ReviewRecord) Values() []string {
	return []string{
		r.ReviewID, r.Date, r.Rating, r.Username, r.AppVersion, r.Title, r.Detail,
		r.RepliedAt, r.ReplyContent, r.ReviewCreatedVersion, r.ThumbsUpCount,
		r.UserImage, r.Apps,
	}
}

// Map applies fn to every field, Sentiment included.
func (r *ReviewRecord) Map(fn func(string) string) {
	for _, p := range r.fields() {
		*p = fn(*p)
	}
}

// RecordFromRow maps a header/row pair onto a record. Header names match
// case-insensitively after trimming; unknown columns are ignored and absent
// ones stay empty.
func RecordFromRow(header, row []string) ReviewRecord {
	var r ReviewRecord
	f := r.fields()
	for i, h := range header {
		p, ok := f[NormalizeColumn(h)]
		if !ok || i >= len(row) {
			continue
		}
		*p = row[i]
	}
	return r
}

// NormalizeColumn is the key used for all column-name comparisons.
func NormalizeColumn(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ColumnIndex returns the position of name in header, or -1.
func ColumnIndex(header []string, name string) int {
	want := NormalizeColumn(name)
	for i, h := range header {
		if NormalizeColumn(h) == want {
			return i
		}
	}
	return -1
}

// Label is the classifier output: 0 neutral, 1 negative.
type Label int

const (
	LabelNeutral  Label = 0
	LabelNegative Label = 1
)

func (l Label) Valid() bool { return l == LabelNeutral || l == LabelNegative }

func (l Label) String() string { return strconv.Itoa(int(l)) }

// ParseLabel accepts the persisted form of a label ("0" or "1").
func ParseLabel(s string) (Label, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || !Label(n).Valid() {
		return 0, ErrInvalidLabel
	}
	return Label(n), nil
}
