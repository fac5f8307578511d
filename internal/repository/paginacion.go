package repository

// paginar clamps page/limit to sane values and returns the row offset.
func paginar(page, limit, porDefecto, maximo int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maximo {
		limit = porDefecto
	}
	return page, limit, (page - 1) * limit
}
