package node

// Content model types.
const (
	TypeContent      = "cm:content"
	TypeFolder       = "cm:folder"
	TypeSystemFolder = "cm:systemfolder"
	TypeCompanyHome  = "app:companyhome"
	TypeSites        = "st:sites"
	TypeSite         = "st:site"
	TypeFolderLink   = "app:folderlink"
	TypeFileLink     = "app:filelink"

	TypeForums = "fm:forums"
	TypeForum  = "fm:forum"
	TypeTopic  = "fm:topic"
	TypePost   = "fm:post"

	TypeRecordCategory         = "rma:recordCategory"
	TypeRecordFolder           = "rma:recordFolder"
	TypeUnfiledRecordContainer = "rma:unfiledRecordContainer"
	TypeDispositionSchedule    = "rma:dispositionSchedule"
	TypeDispositionActionDef   = "rma:dispositionActionDefinition"
	TypeHoldContainer          = "rma:holdContainer"
	TypeHold                   = "rma:hold"
	TypeTransferContainer      = "rma:transferContainer"
	TypeTransfer               = "rma:transfer"
	TypeSavedSearchesContainer = "cm:savedSearches"
)

// Aspects.
const (
	AspectWorkingCopy   = "cm:workingcopy"
	AspectCheckedOut    = "cm:checkedOut"
	AspectLockable      = "cm:lockable"
	AspectTaggable      = "cm:taggable"
	AspectTransferred   = "rma:transferred"
	AspectSiteContainer = "st:siteContainer"
	AspectThumbnailed   = "rn:thumbnailed"
)

// Properties.
const (
	PropName             = "cm:name"
	PropTitle            = "cm:title"
	PropDescription      = "cm:description"
	PropCreated          = "cm:created"
	PropModified         = "cm:modified"
	PropCreator          = "cm:creator"
	PropModifier         = "cm:modifier"
	PropMimetype         = "cm:mimetype"
	PropDestination      = "cm:destination"
	PropWorkingCopyOf    = "cm:original"
	PropWorkingCopyLink  = "cm:workingCopyLink"
	PropWorkingCopyOwner = "cm:workingCopyOwner"
	PropVersionLabel     = "cm:versionLabel"
	PropLockOwner        = "cm:lockOwner"
	PropLockType         = "cm:lockType"
	PropComponentID      = "st:componentId"
	PropSavedQuery       = "cm:savedQuery"
)

// SitesSegment is the qualified path segment of the folder holding all sites.
const SitesSegment = "st:sites"

var containerTypes = map[string]struct{}{
	TypeFolder:                 {},
	TypeSystemFolder:           {},
	TypeCompanyHome:            {},
	TypeSites:                  {},
	TypeSite:                   {},
	TypeForums:                 {},
	TypeForum:                  {},
	TypeTopic:                  {},
	TypeRecordCategory:         {},
	TypeRecordFolder:           {},
	TypeUnfiledRecordContainer: {},
	TypeHoldContainer:          {},
	TypeHold:                   {},
	TypeTransferContainer:      {},
	TypeTransfer:               {},
	TypeSavedSearchesContainer: {},
}

// IsContainerType reports whether nodes of the given type hold children.
func IsContainerType(t string) bool {
	_, ok := containerTypes[t]
	return ok
}
