package views

// AssembleListing maps rows into a listing view-model. A total of zero or
// less means no count was supplied, in which case the number of returned
// rows is reported instead; that undercounts every page but the last.
func AssembleListing(rows []PostRow, total, page int64, category, viewer string) ListingResult {
	articles := make([]ArticleSummary, 0, len(rows))
	for _, r := range rows {
		articles = append(articles, ArticleSummary{
			ID:           r.Post.ID,
			AuthorID:     r.Post.AuthorID,
			Abstract:     r.Post.Abstract,
			Date:         r.Post.Date,
			Title:        r.Post.Title,
			CategoryID:   r.Post.CategoryID,
			CommentCount: r.Post.CommentCount,
			AuthorLogin:  r.AuthorLogin,
			Views:        r.Views,
		})
	}
	if total <= 0 {
		total = int64(len(rows))
	}
	return ListingResult{
		Articles:    articles,
		Total:       total,
		CurrentPage: page,
		Category:    category,
		Viewer:      viewer,
	}
}

// AssembleDetail maps a single row into the article view-model.
// HasLogin is always false: the detail page never reflects the session.
func AssembleDetail(row PostRow) ArticleDetail {
	return ArticleDetail{
		Title:       row.Post.Title,
		Modified:    row.Post.Modified,
		AuthorLogin: row.AuthorLogin,
		Views:       row.Views,
		Content:     row.Post.Content,
		HasLogin:    false,
	}
}
