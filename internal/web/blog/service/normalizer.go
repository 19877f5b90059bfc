package service

import (
	"slices"
	"strconv"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"

	"github.com/Laisky/notion-blog/internal/library/notion"
	"github.com/Laisky/notion-blog/internal/web/blog/model"
)

// NormalizePosts flattens the collection under rootID into posts.
// isCollection is false when the root block is missing or is not a
// collection container, in which case posts is empty.
// Pages that fail to decode are omitted and logged.
func NormalizePosts(logger logSDK.Logger,
	tree *notion.RecordMap, rootID string) (posts []*model.Post, isCollection bool) {
	posts = []*model.Post{}
	id := notion.IDToUUID(rootID)
	root := tree.BlockValue(id)
	if root == nil || !notion.IsCollectionType(root.Type) {
		typ := ""
		if root != nil {
			typ = root.Type
		}
		logger.Warn("root page is not a collection", zap.String("page_id", id), zap.String("type", typ))
		return posts, false
	}

	var schema map[string]*notion.PropertySchema
	if coll := notion.RootCollection(tree, id); coll != nil {
		schema = coll.Schema
	}

	for _, pageID := range notion.CollectionPageIDs(tree, id) {
		block := tree.BlockValue(pageID)
		if block == nil {
			if err := tree.BlockDecodeErr(pageID); err != nil {
				logger.Warn("skip undecodable page", zap.String("page_id", pageID), zap.Error(err))
				continue
			}
			logger.Debug("skip page without block record", zap.String("page_id", pageID))
			continue
		}

		post, err := extractPost(block, schema)
		if err != nil {
			logger.Warn("skip undecodable page", zap.String("page_id", pageID), zap.Error(err))
			continue
		}
		posts = append(posts, post)
	}

	return posts, true
}

// extractPost decodes the schema properties of a page block.
func extractPost(block *notion.Block, schema map[string]*notion.PropertySchema) (*model.Post, error) {
	if block.ID == "" {
		return nil, errors.New("block without id")
	}

	post := &model.Post{
		ID:          block.ID,
		CreatedTime: time.UnixMilli(block.CreatedTime).UTC(),
		FullWidth:   block.FullWidth(),
	}

	// iterate in a fixed order so Extra is deterministic
	propIDs := make([]string, 0, len(block.Properties))
	for propID := range block.Properties {
		propIDs = append(propIDs, propID)
	}
	slices.Sort(propIDs)

	for _, propID := range propIDs {
		prop, ok := schema[propID]
		if !ok || prop == nil {
			continue
		}

		segs, err := notion.ParseSegments(block.Properties[propID])
		if err != nil {
			return nil, errors.Wrapf(err, "property %q", prop.Name)
		}
		if err = assignProperty(post, block.ID, prop, segs); err != nil {
			return nil, errors.Wrapf(err, "property %q", prop.Name)
		}
	}

	return post, nil
}

func assignProperty(post *model.Post, blockID string,
	prop *notion.PropertySchema, segs []notion.Segment) error {
	name := strings.ToLower(strings.TrimSpace(prop.Name))
	switch prop.Type {
	case notion.PropPerson:
		return nil
	case notion.PropDate:
		d, err := notion.FindDate(segs)
		if err != nil {
			return errors.WithStack(err)
		}
		if d != nil && name == "date" {
			post.Date = &model.PostDate{
				StartDate: d.StartDate,
				StartTime: d.StartTime,
				EndDate:   d.EndDate,
				TimeZone:  d.TimeZone,
			}
		}
		return nil
	case notion.PropFile:
		link := notion.FirstLink(segs)
		if link == "" {
			link = notion.PlainText(segs)
		}
		link = notion.ImageProxyURL(link, blockID)
		if name == "thumbnail" {
			post.Thumbnail = link
		} else {
			post.SetExtra(name, link)
		}
		return nil
	}

	text := notion.PlainText(segs)
	switch name {
	case "title":
		post.Title = text
	case "slug":
		post.Slug = strings.TrimSpace(text)
	case "summary":
		post.Summary = text
	case "type":
		post.Type = notion.SplitOptions(text)
	case "status":
		post.Status = notion.SplitOptions(text)
	case "tags":
		post.Tags = notion.SplitOptions(text)
	case "category":
		if opts := notion.SplitOptions(text); len(opts) > 0 {
			post.Category = opts[0]
		}
	case "thumbnail":
		post.Thumbnail = text
	default:
		if prop.Type == notion.PropCheckbox {
			text = strconv.FormatBool(text == "Yes")
		}
		post.SetExtra(name, text)
	}

	return nil
}
