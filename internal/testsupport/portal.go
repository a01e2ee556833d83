package testsupport

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

const (
	sharingPrefix = "/portal/sharing/rest"
	videoPrefix   = "/video/rest/services"
)

// FakeItem is an item held by the fake portal
type FakeItem struct {
	ID       string
	Title    string
	Type     string
	Folder   string
	Snippet  string
	Keywords string
	Text     string
	File     []byte
	URL      string
	Groups   []string
	Org      bool
	Form     map[string]string
}

// FakeFolder is a folder held by the fake portal
type FakeFolder struct {
	ID    string
	Title string
}

// Portal emulates the subset of the ArcGIS sharing and video server REST API
// used by the CLI. Requests are recorded in Calls as "METHOD path" with the
// sharing or video prefix stripped.
type Portal struct {
	Server   *httptest.Server
	Username string
	Password string
	Token    string

	mu          sync.Mutex
	t           testing.TB
	folders     []FakeFolder
	items       map[string]*FakeItem
	order       []string
	taken       map[string]bool
	started     []string
	failures    map[string]string
	layers      map[string][]string
	calls       []string
	nextID      int
	searchQuery []string
}

// NewPortal starts a fake portal for user "operator" / "secret".
func NewPortal(t testing.TB) *Portal {
	t.Helper()

	p := &Portal{
		Username: "operator",
		Password: "secret",
		Token:    "tok-123",
		t:        t,
		items:    map[string]*FakeItem{},
		taken:    map[string]bool{},
		failures: map[string]string{},
		layers:   map[string][]string{},
	}
	p.Server = httptest.NewServer(http.HandlerFunc(p.serve))
	t.Cleanup(p.Server.Close)
	return p
}

// SharingURL is the base for portal REST calls
func (p *Portal) SharingURL() string { return p.Server.URL + sharingPrefix }

// VideoServerURL is the base for video server REST calls
func (p *Portal) VideoServerURL() string { return p.Server.URL + "/video" }

// AddFolder seeds an existing folder and returns its id
func (p *Portal) AddFolder(title string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.newID("folder")
	p.folders = append(p.folders, FakeFolder{ID: id, Title: title})
	return id
}

// AddItem seeds an item and returns it
func (p *Portal) AddItem(item FakeItem) *FakeItem {
	p.mu.Lock()
	defer p.mu.Unlock()
	if item.ID == "" {
		item.ID = p.newID("item")
	}
	stored := item
	p.items[stored.ID] = &stored
	p.order = append(p.order, stored.ID)
	return &stored
}

// TakeServiceName marks a video service name as unavailable
func (p *Portal) TakeServiceName(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.taken[name] = true
}

// FailOn makes the endpoint whose last path segment is endpoint answer with
// an error object carrying message.
func (p *Portal) FailOn(endpoint, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures[endpoint] = message
}

// Calls returns the recorded requests in order
func (p *Portal) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

// CallCount counts recorded requests whose path ends with suffix
func (p *Portal) CallCount(suffix string) int {
	n := 0
	for _, c := range p.Calls() {
		if strings.HasSuffix(c, suffix) {
			n++
		}
	}
	return n
}

// Item returns a copy of the stored item
func (p *Portal) Item(id string) (FakeItem, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	it, ok := p.items[id]
	if !ok {
		return FakeItem{}, false
	}
	return *it, true
}

// ItemsByType returns copies of stored items of the given type in creation order
func (p *Portal) ItemsByType(itemType string) []FakeItem {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []FakeItem
	for _, id := range p.order {
		if it := p.items[id]; it.Type == itemType {
			out = append(out, *it)
		}
	}
	return out
}

// Folders returns the folders currently held
func (p *Portal) Folders() []FakeFolder {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]FakeFolder(nil), p.folders...)
}

// VideoLayers returns the layer JSON posted to a service's addLayer
func (p *Portal) VideoLayers(serviceURL string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.layers[serviceURL]...)
}

// Started returns the service URLs whose stream was started
func (p *Portal) Started() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.started...)
}

// SearchQueries returns every q parameter received by /search
func (p *Portal) SearchQueries() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.searchQuery...)
}

func (p *Portal) newID(prefix string) string {
	p.nextID++
	return fmt.Sprintf("%s%04d", prefix, p.nextID)
}

func (p *Portal) serve(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil && err != http.ErrNotMultipart {
		p.t.Errorf("parse form: %v", err)
	}

	var rel string
	switch {
	case strings.HasPrefix(r.URL.Path, sharingPrefix):
		rel = strings.TrimPrefix(r.URL.Path, sharingPrefix)
	case strings.HasPrefix(r.URL.Path, videoPrefix):
		rel = "/video" + strings.TrimPrefix(r.URL.Path, videoPrefix)
	default:
		http.NotFound(w, r)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, r.Method+" "+rel)

	segments := strings.Split(strings.Trim(rel, "/"), "/")
	last := segments[len(segments)-1]
	if msg, ok := p.failures[last]; ok {
		writeJSON(w, map[string]any{"error": map[string]any{"code": 500, "message": msg, "details": []string{}}})
		return
	}

	if rel == "/generateToken" {
		p.generateToken(w, r)
		return
	}
	if r.FormValue("token") != p.Token {
		writeJSON(w, map[string]any{"error": map[string]any{"code": 498, "message": "Invalid token.", "details": []string{}}})
		return
	}

	switch {
	case rel == "/community/self":
		writeJSON(w, map[string]any{"username": p.Username})
	case rel == "/search":
		p.search(w, r)
	case strings.HasPrefix(rel, "/content/items/") && last == "data":
		p.itemData(w, segments[2])
	case strings.HasPrefix(rel, "/content/users/"):
		p.content(w, r, segments[2:])
	case strings.HasPrefix(rel, "/video"):
		p.video(w, r, segments[1:])
	default:
		w.WriteHeader(http.StatusNotFound)
		writeJSON(w, map[string]any{"error": map[string]any{"code": 404, "message": "not found: " + rel}})
	}
}

func (p *Portal) generateToken(w http.ResponseWriter, r *http.Request) {
	if r.FormValue("username") != p.Username || r.FormValue("password") != p.Password {
		writeJSON(w, map[string]any{"error": map[string]any{
			"code":    400,
			"message": "Unable to generate token.",
			"details": []string{"Invalid username or password."},
		}})
		return
	}
	writeJSON(w, map[string]any{
		"token":   p.Token,
		"expires": time.Now().Add(time.Hour).UnixMilli(),
		"ssl":     false,
	})
}

var (
	ownerFolderRE = regexp.MustCompile(`ownerfolder:(\S+)`)
	titleRE       = regexp.MustCompile(`title:"((?:[^"\\]|\\.)*)"`)
	typeRE        = regexp.MustCompile(`type:"((?:[^"\\]|\\.)*)"`)
)

func (p *Portal) search(w http.ResponseWriter, r *http.Request) {
	q := r.FormValue("q")
	p.searchQuery = append(p.searchQuery, q)

	var folder, title, itemType string
	if m := ownerFolderRE.FindStringSubmatch(q); m != nil {
		folder = m[1]
	}
	if m := titleRE.FindStringSubmatch(q); m != nil {
		title = strings.ReplaceAll(m[1], `\"`, `"`)
	}
	if m := typeRE.FindStringSubmatch(q); m != nil {
		itemType = strings.ReplaceAll(m[1], `\"`, `"`)
	}

	results := []map[string]any{}
	for _, id := range p.order {
		it := p.items[id]
		if folder != "" && it.Folder != folder {
			continue
		}
		if title != "" && !strings.Contains(strings.ToLower(it.Title), strings.ToLower(title)) {
			continue
		}
		if itemType != "" && it.Type != itemType {
			continue
		}
		results = append(results, itemJSON(it))
	}
	page, start, num, next := pageOf(r, results)
	writeJSON(w, map[string]any{"query": q, "total": len(results), "start": start, "num": num, "nextStart": next, "results": page})
}

func (p *Portal) itemData(w http.ResponseWriter, id string) {
	it, ok := p.items[id]
	if !ok {
		writeJSON(w, map[string]any{"error": map[string]any{"code": 400, "message": "Item does not exist or is inaccessible."}})
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	_, _ = io.WriteString(w, it.Text)
}

func (p *Portal) content(w http.ResponseWriter, r *http.Request, segs []string) {
	if len(segs) == 0 || segs[0] != p.Username {
		writeJSON(w, map[string]any{"error": map[string]any{"code": 403, "message": "User does not have permissions"}})
		return
	}
	segs = segs[1:]

	if len(segs) == 0 || (len(segs) == 1 && p.isFolder(segs[0]) && r.Method == http.MethodGet) {
		folder := ""
		if len(segs) == 1 {
			folder = segs[0]
		}
		p.listContent(w, r, folder)
		return
	}

	folder := ""
	if p.isFolder(segs[0]) {
		folder = segs[0]
		segs = segs[1:]
	}

	switch {
	case len(segs) == 1 && segs[0] == "createFolder":
		id := p.newID("folder")
		title := r.FormValue("title")
		p.folders = append(p.folders, FakeFolder{ID: id, Title: title})
		writeJSON(w, map[string]any{"success": true, "folder": map[string]any{"id": id, "title": title, "username": p.Username}})
	case len(segs) == 1 && segs[0] == "addItem":
		p.addItem(w, r, folder)
	case len(segs) == 1 && segs[0] == "publish":
		p.publish(w, r)
	case len(segs) == 1 && segs[0] == "shareItems":
		p.share(w, r)
	case len(segs) == 1 && segs[0] == "createService":
		p.createService(w, r)
	case len(segs) == 3 && segs[0] == "items" && segs[2] == "update":
		it, ok := p.items[segs[1]]
		if !ok {
			writeJSON(w, map[string]any{"error": map[string]any{"code": 400, "message": "Item does not exist"}})
			return
		}
		it.Text = r.FormValue("text")
		writeJSON(w, map[string]any{"success": true, "id": it.ID})
	default:
		w.WriteHeader(http.StatusNotFound)
		writeJSON(w, map[string]any{"error": map[string]any{"code": 404, "message": "unknown content path"}})
	}
}

func (p *Portal) isFolder(id string) bool {
	for _, f := range p.folders {
		if f.ID == id {
			return true
		}
	}
	return false
}

func (p *Portal) listContent(w http.ResponseWriter, r *http.Request, folder string) {
	folders := []map[string]any{}
	for _, f := range p.folders {
		folders = append(folders, map[string]any{"id": f.ID, "title": f.Title, "username": p.Username})
	}
	items := []map[string]any{}
	for _, id := range p.order {
		if it := p.items[id]; it.Folder == folder {
			items = append(items, itemJSON(it))
		}
	}
	page, start, num, next := pageOf(r, items)
	writeJSON(w, map[string]any{
		"username":  p.Username,
		"total":     len(items),
		"start":     start,
		"num":       num,
		"nextStart": next,
		"items":     page,
		"folders":   folders,
	})
}

// pageOf slices results by the 1-based start and num parameters and
// returns the portal's nextStart, -1 on the last page.
func pageOf(r *http.Request, results []map[string]any) ([]map[string]any, int, int, int) {
	start, err := strconv.Atoi(r.FormValue("start"))
	if err != nil || start < 1 {
		start = 1
	}
	num, err := strconv.Atoi(r.FormValue("num"))
	if err != nil || num < 1 {
		num = 10
	}
	from := start - 1
	if from > len(results) {
		from = len(results)
	}
	to := from + num
	if to > len(results) {
		to = len(results)
	}
	next := -1
	if to < len(results) {
		next = to + 1
	}
	return results[from:to], start, num, next
}

func (p *Portal) addItem(w http.ResponseWriter, r *http.Request, folder string) {
	it := &FakeItem{
		ID:       p.newID("item"),
		Title:    r.FormValue("title"),
		Type:     r.FormValue("type"),
		Folder:   folder,
		Snippet:  r.FormValue("snippet"),
		Keywords: r.FormValue("typeKeywords"),
		Text:     r.FormValue("text"),
		Form:     map[string]string{},
	}
	for k := range r.Form {
		it.Form[k] = r.Form.Get(k)
	}
	if r.MultipartForm != nil {
		for k := range r.MultipartForm.Value {
			it.Form[k] = r.MultipartForm.Value[k][0]
		}
	}
	if f, _, err := r.FormFile("file"); err == nil {
		it.File, _ = io.ReadAll(f)
		_ = f.Close()
	}
	p.items[it.ID] = it
	p.order = append(p.order, it.ID)
	writeJSON(w, map[string]any{"success": true, "id": it.ID, "folder": folder})
}

func (p *Portal) publish(w http.ResponseWriter, r *http.Request) {
	src, ok := p.items[r.FormValue("itemId")]
	if !ok {
		writeJSON(w, map[string]any{"error": map[string]any{"code": 400, "message": "Item does not exist"}})
		return
	}
	var params struct {
		Name string `json:"name"`
	}
	_ = json.Unmarshal([]byte(r.FormValue("publishParameters")), &params)

	svc := &FakeItem{
		ID:    p.newID("item"),
		Title: params.Name,
		Type:  "Feature Service",
		URL:   p.Server.URL + "/server/rest/services/Hosted/" + params.Name + "/FeatureServer",
		Form:  map[string]string{"filetype": r.FormValue("filetype"), "source": src.ID},
	}
	p.items[svc.ID] = svc
	p.order = append(p.order, svc.ID)
	writeJSON(w, map[string]any{"services": []map[string]any{{
		"type":          "Feature Service",
		"serviceurl":    svc.URL,
		"serviceItemId": svc.ID,
	}}})
}

func (p *Portal) share(w http.ResponseWriter, r *http.Request) {
	results := []map[string]any{}
	for _, id := range strings.Split(r.FormValue("items"), ",") {
		it, ok := p.items[id]
		if !ok {
			results = append(results, map[string]any{"itemId": id, "success": false, "notSharedWith": []string{}})
			continue
		}
		if g := r.FormValue("groups"); g != "" {
			it.Groups = append(it.Groups, g)
		}
		if r.FormValue("org") == "true" {
			it.Org = true
		}
		results = append(results, map[string]any{"itemId": id, "success": true, "notSharedWith": []string{}})
	}
	writeJSON(w, map[string]any{"results": results})
}

func (p *Portal) createService(w http.ResponseWriter, r *http.Request) {
	var params struct {
		ServiceName string `json:"serviceName"`
	}
	_ = json.Unmarshal([]byte(r.FormValue("createParameters")), &params)
	if r.FormValue("outputType") != "videoService" {
		writeJSON(w, map[string]any{"error": map[string]any{"code": 400, "message": "unsupported outputType"}})
		return
	}

	svc := &FakeItem{
		ID:    p.newID("item"),
		Title: params.ServiceName,
		Type:  "Video Service",
		URL:   p.Server.URL + videoPrefix + "/" + params.ServiceName + "/VideoServer",
	}
	p.items[svc.ID] = svc
	p.order = append(p.order, svc.ID)
	p.taken[params.ServiceName] = true
	writeJSON(w, map[string]any{"success": true, "itemId": svc.ID, "serviceurl": svc.URL, "name": params.ServiceName, "type": "Video Service"})
}

func (p *Portal) video(w http.ResponseWriter, r *http.Request, segs []string) {
	switch {
	case len(segs) == 0 || (len(segs) == 1 && segs[0] == ""):
		services := []map[string]any{}
		for name := range p.taken {
			services = append(services, map[string]any{"name": name, "type": "VideoServer"})
		}
		writeJSON(w, map[string]any{"services": services})
	case len(segs) == 1 && segs[0] == "isServiceNameAvailable":
		writeJSON(w, map[string]any{"available": !p.taken[r.FormValue("serviceName")]})
	case len(segs) == 3 && segs[2] == "addLayer":
		url := p.Server.URL + videoPrefix + "/" + segs[0] + "/" + segs[1]
		p.layers[url] = append(p.layers[url], r.FormValue("layer"))
		writeJSON(w, map[string]any{"success": true})
	case len(segs) == 4 && segs[2] == "0" && segs[3] == "start":
		url := p.Server.URL + videoPrefix + "/" + segs[0] + "/" + segs[1]
		if r.FormValue("stopOn") != "request" {
			writeJSON(w, map[string]any{"error": map[string]any{"code": 400, "message": "stopOn required"}})
			return
		}
		p.started = append(p.started, url)
		writeJSON(w, map[string]any{"success": true})
	default:
		w.WriteHeader(http.StatusNotFound)
		writeJSON(w, map[string]any{"error": map[string]any{"code": 404, "message": "unknown video path"}})
	}
}

func itemJSON(it *FakeItem) map[string]any {
	return map[string]any{
		"id":          it.ID,
		"title":       it.Title,
		"type":        it.Type,
		"url":         it.URL,
		"ownerFolder": it.Folder,
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
