package pagination

// PageDefaultLimit is the default page size if not specified
const PageDefaultLimit = 10

// PageMaxLimit is the maximum allowed page size
const PageMaxLimit = 100
