package cmd

import (
	"context"
	"encoding/xml"
	"net/url"
	"os"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"

	"github.com/Laisky/notion-blog/internal/web/blog/model"
	"github.com/Laisky/notion-blog/library/log"
)

// DisqusXML represents the root element of Disqus export XML
type DisqusXML struct {
	XMLName xml.Name       `xml:"disqus"`
	Threads []DisqusThread `xml:"thread"`
	Posts   []DisqusPost   `xml:"post"`
}

// DisqusThread represents a Disqus thread element (corresponds to a blog post)
type DisqusThread struct {
	// DsqID is the Disqus internal thread ID
	DsqID     string `xml:"id,attr"`
	Link      string `xml:"link"`
	Title     string `xml:"title"`
	IsDeleted bool   `xml:"isDeleted"`
}

// DisqusPost represents a Disqus post element (a comment)
type DisqusPost struct {
	// DsqID is the Disqus internal post ID
	DsqID     string          `xml:"id,attr"`
	Message   string          `xml:"message"`
	CreatedAt string          `xml:"createdAt"`
	IsDeleted bool            `xml:"isDeleted"`
	IsSpam    bool            `xml:"isSpam"`
	Author    DisqusAuthor    `xml:"author"`
	Thread    DisqusThreadRef `xml:"thread"`
}

// DisqusAuthor represents the author of a post
type DisqusAuthor struct {
	Name        string `xml:"name"`
	IsAnonymous bool   `xml:"isAnonymous"`
	Username    string `xml:"username"`
}

// DisqusThreadRef references a thread by its Disqus ID
type DisqusThreadRef struct {
	DsqID string `xml:"id,attr"`
}

// importConfig holds the configuration for the import command
type importConfig struct {
	DisqusFile string
	DryRun     bool
}

var importCMD = &cobra.Command{
	Use:   "import",
	Short: "import data from external sources",
	Long:  `Import data from external sources into the cache store`,
	Args:  gcmd.NoExtraArgs,
}

var importCommentsCMD = &cobra.Command{
	Use:   "comments",
	Short: "import comments from Disqus export",
	Long: `Import comments from a Disqus XML export file into the comment lists.

Threads are matched to posts by the last path segment of the thread link,
which must be the post slug. Deleted and spam comments are skipped, and
comments imported before are not appended again.

Example usage:
  go run entrypoints/main.go import comments -c settings.yml --disqus_file=disqus_exported_data.xml`,
	Args: gcmd.NoExtraArgs,
	PreRun: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := initialize(ctx, cmd); err != nil {
			log.Logger.Panic("init", zap.Error(err))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		cfg := importConfig{
			DisqusFile: cmd.Flag("disqus_file").Value.String(),
			DryRun:     cmd.Flag("dry").Value.String() == "true",
		}

		if err := runImportComments(ctx, cfg); err != nil {
			log.Logger.Panic("import comments", zap.Error(err))
		}
	},
}

func init() {
	rootCMD.AddCommand(importCMD)
	importCMD.AddCommand(importCommentsCMD)

	importCommentsCMD.Flags().String("disqus_file", "", "path to the Disqus XML export file (required)")
	importCommentsCMD.Flags().Bool("dry", false, "parse and report without writing")
	if err := importCommentsCMD.MarkFlagRequired("disqus_file"); err != nil {
		log.Logger.Panic("mark flag required", zap.Error(err))
	}
}

// runImportComments orchestrates the import of Disqus comments into the comment store
func runImportComments(ctx context.Context, cfg importConfig) error {
	logger := log.Logger.Named("import-comments")
	logger.Info("starting Disqus comments import",
		zap.String("disqus_file", cfg.DisqusFile),
		zap.Bool("dry_run", cfg.DryRun),
	)

	disqusData, err := parseDisqusXML(cfg.DisqusFile)
	if err != nil {
		return errors.Wrap(err, "parse Disqus XML")
	}
	logger.Info("parsed Disqus XML",
		zap.Int("threads", len(disqusData.Threads)),
		zap.Int("posts", len(disqusData.Posts)),
	)

	threadToSlug := buildThreadToSlugMap(disqusData.Threads)
	bySlug, stats := groupDisqusComments(disqusData.Posts, threadToSlug)
	if cfg.DryRun {
		logger.Info("dry run, nothing written",
			zap.Int("slugs", len(bySlug)),
			zap.Int("comments", stats.Parsed),
		)
		return nil
	}

	svc, err := setupModules(ctx)
	if err != nil {
		return errors.Wrap(err, "setup modules")
	}

	slugs := make([]string, 0, len(bySlug))
	for slug := range bySlug {
		slugs = append(slugs, slug)
	}
	slices.Sort(slugs)
	for _, slug := range slugs {
		n, err := svc.ImportComments(ctx, slug, bySlug[slug])
		stats.Imported += n
		if err != nil {
			return errors.Wrapf(err, "import comments of %q", slug)
		}
		logger.Debug("imported comments", zap.String("slug", slug), zap.Int("n", n))
	}

	logger.Info("import completed",
		zap.Int("imported", stats.Imported),
		zap.Int("already_imported", stats.Parsed-stats.Imported),
		zap.Int("skipped_deleted", stats.SkippedDeleted),
		zap.Int("skipped_spam", stats.SkippedSpam),
		zap.Int("skipped_no_post", stats.SkippedNoPost),
	)
	return nil
}

// parseDisqusXML reads and parses a Disqus XML export file
func parseDisqusXML(filePath string) (*DisqusXML, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "read file %s", filePath)
	}

	var disqus DisqusXML
	if err := xml.Unmarshal(data, &disqus); err != nil {
		return nil, errors.Wrap(err, "unmarshal XML")
	}

	return &disqus, nil
}

// buildThreadToSlugMap builds a mapping from Disqus thread ID to post slug
func buildThreadToSlugMap(threads []DisqusThread) map[string]string {
	result := make(map[string]string)
	for _, thread := range threads {
		if thread.IsDeleted {
			continue
		}

		slug := extractSlugFromLink(thread.Link)
		if slug == "" {
			continue
		}
		result[thread.DsqID] = slug
	}

	return result
}

// extractSlugFromLink returns the unescaped last path segment of link,
// like `hello-world` for `https://blog.example.com/hello-world/`.
func extractSlugFromLink(link string) string {
	parsed, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return ""
	}

	baseName := path.Base(strings.TrimRight(parsed.Path, "/"))
	if baseName == "." || baseName == "/" || baseName == "" {
		return ""
	}

	slug, err := url.PathUnescape(baseName)
	if err != nil {
		return baseName
	}
	return slug
}

// importStats tracks statistics for the import process
type importStats struct {
	Parsed         int
	Imported       int
	SkippedDeleted int
	SkippedSpam    int
	SkippedNoPost  int
}

// groupDisqusComments converts Disqus posts to comments grouped by slug
func groupDisqusComments(posts []DisqusPost, threadToSlug map[string]string) (map[string][]*model.Comment, *importStats) {
	logger := log.Logger.Named("import-comments")
	stats := &importStats{}
	result := make(map[string][]*model.Comment)

	for _, post := range posts {
		switch {
		case post.IsDeleted:
			stats.SkippedDeleted++
			continue
		case post.IsSpam:
			stats.SkippedSpam++
			continue
		}

		slug, ok := threadToSlug[post.Thread.DsqID]
		if !ok {
			stats.SkippedNoPost++
			logger.Debug("no slug mapping for thread", zap.String("thread_id", post.Thread.DsqID))
			continue
		}

		createdAt, err := parseDisqusTime(post.CreatedAt)
		if err != nil {
			logger.Warn("failed to parse created time, using current time",
				zap.String("time", post.CreatedAt),
				zap.Error(err),
			)
			createdAt = time.Now()
		}

		author := post.Author.Name
		if author == "" && !post.Author.IsAnonymous {
			author = post.Author.Username
		}

		result[slug] = append(result[slug], &model.Comment{
			ID:      "disqus-" + post.DsqID,
			Date:    createdAt.UnixMilli(),
			Author:  author,
			Content: cleanHTMLContent(post.Message),
		})
		stats.Parsed++
	}

	return result, stats
}

// parseDisqusTime parses a Disqus timestamp in ISO 8601 format
func parseDisqusTime(s string) (time.Time, error) {
	// Disqus uses format: 2015-03-25T14:10:41Z
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		// Try without timezone
		t, err = time.Parse("2006-01-02T15:04:05", s)
		if err != nil {
			return time.Time{}, errors.Wrapf(err, "parse time %s", s)
		}
	}
	return t.UTC(), nil
}

// cleanHTMLContent turns paragraph and line break tags into newlines.
// Remaining markup is stripped when the comment is stored.
func cleanHTMLContent(content string) string {
	content = strings.TrimSpace(content)

	content = strings.ReplaceAll(content, "<p>", "")
	content = strings.ReplaceAll(content, "</p>", "\n")
	content = strings.ReplaceAll(content, "<br>", "\n")
	content = strings.ReplaceAll(content, "<br/>", "\n")
	content = strings.ReplaceAll(content, "<br />", "\n")

	return strings.TrimSpace(content)
}
