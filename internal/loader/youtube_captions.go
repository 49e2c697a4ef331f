package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
)

const (
	youtubeBaseURL    = "https://www.youtube.com"
	ytAndroidVersion  = "20.10.38"
	ytAndroidUA       = "com.google.android.youtube/" + ytAndroidVersion + " (Linux; U; Android 11) gzip"
	ytPlayerMarker    = "ytInitialPlayerResponse = "
	maxWatchPageBytes = 6 << 20
	maxTimedTextBytes = 2 << 20
)

//nolint:gochecknoglobals // Read-only preference list.
var preferredCaptionLanguages = []string{"en"}

type playerResponse struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	VideoDetails *struct {
		Title  string `json:"title"`
		Author string `json:"author"`
	} `json:"videoDetails"`
}

type captionTrack struct {
	BaseURL      string      `json:"baseUrl"`
	LanguageCode string      `json:"languageCode"`
	Kind         string      `json:"kind"` // "asr" marks auto-generated tracks
	Name         captionName `json:"name"`
}

type captionName struct {
	SimpleText string `json:"simpleText"`
	Runs       []struct {
		Text string `json:"text"`
	} `json:"runs"`
}

func (n captionName) String() string {
	if n.SimpleText != "" {
		return n.SimpleText
	}

	parts := make([]string, 0, len(n.Runs))
	for _, r := range n.Runs {
		parts = append(parts, r.Text)
	}

	return strings.Join(parts, "")
}

type timedText struct {
	Lines []timedTextLine `xml:"text"`
	Body  struct {
		Paragraphs []timedTextParagraph `xml:"p"`
	} `xml:"body"`
}

type timedTextLine struct {
	Text string `xml:",chardata"`
}

type timedTextParagraph struct {
	Text     string          `xml:",chardata"`
	Segments []timedTextLine `xml:"s"`
}

// needsPoToken reports tracks that only work in a browser session.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// pickBestTrack prefers a manual track in a preferred language, then an
// auto-generated one, then any English track, then the first usable track.
func pickBestTrack(tracks []captionTrack, langs []string) (captionTrack, bool) {
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if t.BaseURL != "" && !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return captionTrack{}, false
	}

	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t, true
			}
		}
	}

	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang {
				return t, true
			}
		}
	}

	for _, t := range usable {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t, true
		}
	}

	return usable[0], true
}

// extractJSON returns the balanced JSON object at the start of b.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}

	depth := 0
	inStr := false
	escaped := false

	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}

			continue
		}

		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}

	return nil
}

func parseTimedText(data []byte) (string, error) {
	var tt timedText
	if err := xml.Unmarshal(data, &tt); err != nil {
		return "", fmt.Errorf("parse timedtext: %w", err)
	}

	var parts []string
	add := func(s string) {
		s = strings.Join(strings.Fields(html.UnescapeString(s)), " ")
		if s != "" {
			parts = append(parts, s)
		}
	}

	for _, line := range tt.Lines {
		add(line.Text)
	}

	for _, p := range tt.Body.Paragraphs {
		if len(p.Segments) == 0 {
			add(p.Text)
			continue
		}

		for _, s := range p.Segments {
			add(s.Text)
		}
	}

	return strings.Join(parts, " "), nil
}

// transcriptFromPlayer selects a caption track and downloads its text.
func transcriptFromPlayer(
	ctx context.Context,
	client *http.Client,
	player *playerResponse,
) (*Transcript, error) {
	if player.Captions == nil {
		if player.PlayabilityStatus != nil && player.PlayabilityStatus.Reason != "" {
			return nil, fmt.Errorf("captions unavailable: %s", player.PlayabilityStatus.Reason)
		}

		return nil, errors.New("no captions in player response")
	}

	tracks := player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return nil, errors.New("no caption tracks")
	}

	track, ok := pickBestTrack(tracks, preferredCaptionLanguages)
	if !ok {
		return nil, errors.New("all caption tracks require a browser session")
	}

	text, err := fetchTimedText(ctx, client, track.BaseURL)
	if err != nil {
		return nil, err
	}

	t := &Transcript{
		Text:         text,
		Language:     track.Name.String(),
		LanguageCode: track.LanguageCode,
		IsGenerated:  track.Kind == "asr",
	}
	if player.VideoDetails != nil {
		t.Title = player.VideoDetails.Title
		t.Author = player.VideoDetails.Author
	}

	return t, nil
}

func fetchTimedText(ctx context.Context, client *http.Client, baseURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req) //nolint:gosec // URL comes from the player response.
	if err != nil {
		return "", fmt.Errorf("fetch timedtext: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch timedtext: unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTimedTextBytes))
	if err != nil {
		return "", fmt.Errorf("read timedtext: %w", err)
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return "", errors.New("timedtext response is empty")
	}

	return parseTimedText(body)
}

// WatchPageFetcher scrapes the caption tracks embedded in the watch page.
type WatchPageFetcher struct {
	client  *http.Client
	baseURL string
}

func NewWatchPageFetcher(client *http.Client, baseURL string) *WatchPageFetcher {
	if baseURL == "" {
		baseURL = youtubeBaseURL
	}

	return &WatchPageFetcher{client: client, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (f *WatchPageFetcher) FetchTranscript(ctx context.Context, videoID string) (*Transcript, error) {
	watchURL := f.baseURL + "/watch?v=" + videoID

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, watchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept", acceptHTML)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("watch page: unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxWatchPageBytes))
	if err != nil {
		return nil, fmt.Errorf("read watch page: %w", err)
	}

	idx := bytes.Index(body, []byte(ytPlayerMarker))
	if idx < 0 {
		return nil, errors.New("player response not found in watch page")
	}

	data := extractJSON(body[idx+len(ytPlayerMarker):])
	if data == nil {
		return nil, errors.New("extract player response")
	}

	var player playerResponse
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, fmt.Errorf("decode player response: %w", err)
	}

	return transcriptFromPlayer(ctx, f.client, &player)
}

// InnertubeFetcher asks the ANDROID player endpoint for caption tracks.
type InnertubeFetcher struct {
	client  *http.Client
	baseURL string
}

func NewInnertubeFetcher(client *http.Client, baseURL string) *InnertubeFetcher {
	if baseURL == "" {
		baseURL = youtubeBaseURL
	}

	return &InnertubeFetcher{client: client, baseURL: strings.TrimSuffix(baseURL, "/")}
}

type innertubeRequest struct {
	VideoID        string           `json:"videoId"`
	Context        innertubeContext `json:"context"`
	RacyCheckOk    bool             `json:"racyCheckOk"`
	ContentCheckOk bool             `json:"contentCheckOk"`
}

type innertubeContext struct {
	Client innertubeClient `json:"client"`
}

type innertubeClient struct {
	ClientName        string `json:"clientName"`
	ClientVersion     string `json:"clientVersion"`
	AndroidSdkVersion int    `json:"androidSdkVersion,omitempty"`
	Hl                string `json:"hl,omitempty"`
	Gl                string `json:"gl,omitempty"`
}

func (f *InnertubeFetcher) FetchTranscript(ctx context.Context, videoID string) (*Transcript, error) {
	payload, err := json.Marshal(innertubeRequest{
		VideoID: videoID,
		Context: innertubeContext{
			Client: innertubeClient{
				ClientName:        "ANDROID",
				ClientVersion:     ytAndroidVersion,
				AndroidSdkVersion: 30,
				Hl:                "en",
				Gl:                "US",
			},
		},
		RacyCheckOk:    true,
		ContentCheckOk: true,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		f.baseURL+"/youtubei/v1/player?prettyPrint=false",
		bytes.NewReader(payload),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", ytAndroidUA)
	req.Header.Set("X-Youtube-Client-Name", "3")
	req.Header.Set("X-Youtube-Client-Version", ytAndroidVersion)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("android player: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("android player: unexpected status: %d", resp.StatusCode)
	}

	var player playerResponse
	if err := json.NewDecoder(resp.Body).Decode(&player); err != nil {
		return nil, fmt.Errorf("decode player response: %w", err)
	}

	return transcriptFromPlayer(ctx, f.client, &player)
}
