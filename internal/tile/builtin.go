package tile

const (
	DefaultTileID = "ground"
	DefaultRows   = 12
	DefaultCols   = 15
)

const (
	roadBg    = "#334155"
	roadFg    = "#f8fafc"
	channelBg = "#0ea5e9"
	channelFg = "#e0f2fe"
	dockBg    = "#78350f"
	dockFg    = "#0ea5e9"
	indBg     = "#b45309"
	indRoadFg = "#334155"
)

var builtinDefs = []Definition{
	{ID: "none", Label: "None", Category: Terrain, BgColor: "#000000", FgColor: "#000000", IconType: "solid"},
	{ID: "ground", Label: "Ground", Category: Terrain, BgColor: "#4ade80", FgColor: "#22c55e", IconType: "solid"},
	{ID: "sea", Label: "Sea", Category: Terrain, BgColor: "#3b82f6", FgColor: "#2563eb", IconType: "waves"},
	{ID: "metal", Label: "Metal", Category: Terrain, BgColor: "#94a3b8", FgColor: "#64748b", IconType: "grid"},

	{ID: "road_i", Label: "Road I", Category: Road, BgColor: roadBg, FgColor: roadFg, IconType: "road_i"},
	{ID: "road_l", Label: "Road L", Category: Road, BgColor: roadBg, FgColor: roadFg, IconType: "road_l"},
	{ID: "road_t", Label: "Road T", Category: Road, BgColor: roadBg, FgColor: roadFg, IconType: "road_t"},
	{ID: "road_x", Label: "Road X", Category: Road, BgColor: roadBg, FgColor: roadFg, IconType: "road_x"},
	{ID: "road_end", Label: "Road End", Category: Road, BgColor: roadBg, FgColor: roadFg, IconType: "road_end"},
	{ID: "bridge_start", Label: "Bridge Start", Category: Road, BgColor: roadBg, FgColor: "#f59e0b", IconType: "bridge"},
	{ID: "uphill", Label: "Uphill", Category: Road, BgColor: "#65a30d", FgColor: roadBg, IconType: "uphill"},

	{ID: "channel_i", Label: "Channel I", Category: Channel, BgColor: channelBg, FgColor: channelFg, IconType: "channel_i"},
	{ID: "channel_l", Label: "Channel L", Category: Channel, BgColor: channelBg, FgColor: channelFg, IconType: "channel_l"},
	{ID: "channel_t", Label: "Channel T", Category: Channel, BgColor: channelBg, FgColor: channelFg, IconType: "channel_t"},
	{ID: "channel_x", Label: "Channel X", Category: Channel, BgColor: channelBg, FgColor: channelFg, IconType: "channel_x"},
	{ID: "channel_end", Label: "Channel End", Category: Channel, BgColor: channelBg, FgColor: channelFg, IconType: "channel_end"},
	{ID: "channel_footbridge", Label: "Channel Footbridge", Category: Channel, BgColor: channelBg, FgColor: "#78350f", IconType: "channel_foot"},
	{ID: "channel_long_l", Label: "Channel Long L", Category: Channel, BgColor: channelBg, FgColor: channelFg, IconType: "channel_long_l"},

	{ID: "dock_l_ext", Label: "Dock L Ext", Category: Dock, BgColor: dockBg, FgColor: dockFg, IconType: "dock_l_ext"},
	{ID: "dock_l_int", Label: "Dock L Int", Category: Dock, BgColor: dockBg, FgColor: dockFg, IconType: "dock_l_int"},
	{ID: "dock_i", Label: "Dock I", Category: Dock, BgColor: dockBg, FgColor: dockFg, IconType: "dock_i"},
	{ID: "dock_u", Label: "Dock U", Category: Dock, BgColor: dockBg, FgColor: dockFg, IconType: "dock_u"},
	{ID: "dock_2_channel", Label: "Dock 2 Channel", Category: Dock, BgColor: dockBg, FgColor: dockFg, IconType: "dock_2_channel"},

	{ID: "industry", Label: "Industry", Category: Industry, BgColor: indBg, FgColor: "#fef3c7", IconType: "factory"},
	{ID: "industry_road_i", Label: "Ind. Road I", Category: Industry, BgColor: indBg, FgColor: indRoadFg, IconType: "ind_road_i"},
	{ID: "industry_road_c", Label: "Ind. Road C", Category: Industry, BgColor: indBg, FgColor: indRoadFg, IconType: "ind_road_c"},
	{ID: "industry_road_t", Label: "Ind. Road T", Category: Industry, BgColor: indBg, FgColor: indRoadFg, IconType: "ind_road_t"},
	{ID: "industry_road_x", Label: "Ind. Road X", Category: Industry, BgColor: indBg, FgColor: indRoadFg, IconType: "ind_road_x"},
	{ID: "industry_road_end", Label: "Ind. Road End", Category: Industry, BgColor: indBg, FgColor: indRoadFg, IconType: "ind_road_end"},
}

// Builtin returns the standard tile set. Each call builds a fresh catalog.
func Builtin() *Catalog {
	return MustCatalog(builtinDefs)
}
