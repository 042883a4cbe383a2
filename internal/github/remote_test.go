package github

import "testing"

func TestParseRepository(t *testing.T) {
	tests := []struct {
		slug      string
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{slug: "dshills/prbot", wantOwner: "dshills", wantRepo: "prbot"},
		{slug: " octo/hello-world \n", wantOwner: "octo", wantRepo: "hello-world"},
		{slug: "noslash", wantErr: true},
		{slug: "/repo", wantErr: true},
		{slug: "owner/", wantErr: true},
		{slug: "a/b/c", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			owner, repo, err := ParseRepository(tt.slug)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tt.wantErr)
			}
			if owner != tt.wantOwner || repo != tt.wantRepo {
				t.Errorf("got %q/%q, want %q/%q", owner, repo, tt.wantOwner, tt.wantRepo)
			}
		})
	}
}

func TestParseRemoteURL(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{
			name:      "HTTPS",
			url:       "https://github.com/dshills/prbot.git",
			wantOwner: "dshills",
			wantRepo:  "prbot",
		},
		{
			name:      "HTTPS no .git",
			url:       "https://github.com/dshills/prbot",
			wantOwner: "dshills",
			wantRepo:  "prbot",
		},
		{
			name:      "SSH",
			url:       "git@github.com:dshills/prbot.git",
			wantOwner: "dshills",
			wantRepo:  "prbot",
		},
		{
			name:    "invalid",
			url:     "not-a-url",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, err := ParseRemoteURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if owner != tt.wantOwner {
				t.Errorf("owner = %q, want %q", owner, tt.wantOwner)
			}
			if repo != tt.wantRepo {
				t.Errorf("repo = %q, want %q", repo, tt.wantRepo)
			}
		})
	}
}
